package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"grievgo/backend/internal/config"
	"grievgo/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// grievanceEventChannel is the Redis Pub/Sub channel carrying lifecycle events.
const grievanceEventChannel = "grievance:events"

// grievanceSeqKey is the single authoritative id counter. Serializing id
// assignment through Redis INCR keeps "GRV" + sequence collision-free even
// when two submissions race.
const grievanceSeqKey = "grievance:seq"

type Storage interface {
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	IncrementMisuseStrikes(email string) (int, error)

	CreateGrievance(g *models.Grievance) error
	SaveGrievance(g *models.Grievance) error
	GetGrievanceByID(id string) (*models.Grievance, error)
	GetGrievancesByEmail(email string) ([]models.Grievance, error)
	GetGrievancesByOrganization(org string) ([]models.Grievance, error)
	ListGrievances() ([]models.Grievance, error)
	AppendHistory(entry *models.HistoryEntry) error

	NextGrievanceSeq() (int64, error)
	PublishGrievanceEvent(ev models.GrievanceEvent) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser зберігає користувача в PostgreSQL
func (s *Service) SaveUser(user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	return s.DB.Save(user).Error
}

// GetUserByID повертає користувача за його UUID.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks a user up by the case-insensitive email key.
// Returns (nil, nil) when no such user exists.
func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "email = ?", models.NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementMisuseStrikes bumps the strike counter for the account matching
// email and returns the new value. Missing accounts are not an error: the
// grievance may predate the account's deletion.
func (s *Service) IncrementMisuseStrikes(email string) (int, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return 0, err
	}
	if user == nil {
		log.Printf("WARNING: strike for unknown account %s ignored", email)
		return 0, nil
	}

	user.MisuseStrikes++
	if err := s.DB.Model(user).Update("misuse_strikes", user.MisuseStrikes).Error; err != nil {
		return 0, err
	}
	return user.MisuseStrikes, nil
}

// CreateGrievance створює новий запис скарги разом з history та documents.
func (s *Service) CreateGrievance(g *models.Grievance) error {
	if err := s.DB.Create(g).Error; err != nil {
		log.Printf("ERROR: Failed to create grievance %s: %v", g.ID, err)
		return err
	}
	return nil
}

// SaveGrievance зберігає зміни в існуючій скарзі (без history).
func (s *Service) SaveGrievance(g *models.Grievance) error {
	return s.DB.Omit("History", "Documents").Save(g).Error
}

// GetGrievanceByID returns a grievance with its full history trail and
// document names (content excluded; see GetDocument). (nil, nil) if missing.
func (s *Service) GetGrievanceByID(id string) (*models.Grievance, error) {
	var g models.Grievance
	err := s.DB.
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGrievancesByEmail returns all grievances filed by one citizen,
// most recent first.
func (s *Service) GetGrievancesByEmail(email string) ([]models.Grievance, error) {
	var out []models.Grievance
	err := s.DB.
		Where("complainant_email = ?", models.NormalizeEmail(email)).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		log.Printf("ERROR: Failed to list grievances for %s: %v", email, err)
		return nil, err
	}
	return out, nil
}

// GetGrievancesByOrganization returns all grievances for one department,
// most recent first. This is the admin's working set.
func (s *Service) GetGrievancesByOrganization(org string) ([]models.Grievance, error) {
	var out []models.Grievance
	err := s.DB.
		Where("organization = ?", org).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		log.Printf("ERROR: Failed to list grievances for department %s: %v", org, err)
		return nil, err
	}
	return out, nil
}

// ListGrievances returns every grievance with its history trail, most recent
// first. This is the ops-wide view used by the admin CLI.
func (s *Service) ListGrievances() ([]models.Grievance, error) {
	var out []models.Grievance
	err := s.DB.
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendHistory додає запис до history trail скарги.
func (s *Service) AppendHistory(entry *models.HistoryEntry) error {
	return s.DB.Create(entry).Error
}

// GetDocument returns one attachment with content bytes.
func (s *Service) GetDocument(grievanceID, name string) (*models.GrievanceDocument, error) {
	var doc models.GrievanceDocument
	err := s.DB.First(&doc, "grievance_id = ? AND name = ?", grievanceID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// NextGrievanceSeq повертає наступний номер скарги через Redis INCR.
func (s *Service) NextGrievanceSeq() (int64, error) {
	return s.Redis.Incr(s.Ctx, grievanceSeqKey).Result()
}

// SyncGrievanceSeq aligns the Redis counter with the highest id already in
// the database. Called once at startup so a fresh Redis never reissues ids.
func (s *Service) SyncGrievanceSeq() error {
	var ids []string
	if err := s.DB.Model(&models.Grievance{}).Pluck("id", &ids).Error; err != nil {
		return err
	}

	var maxSeq int64
	for _, id := range ids {
		n, err := strconv.ParseInt(strings.TrimPrefix(id, config.GrievanceIDPrefix), 10, 64)
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}

	current, err := s.Redis.Get(s.Ctx, grievanceSeqKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if maxSeq > current {
		if err := s.Redis.Set(s.Ctx, grievanceSeqKey, maxSeq, 0).Err(); err != nil {
			return err
		}
		log.Printf("INFO: grievance id counter synced to %d", maxSeq)
	}
	return nil
}

// PublishGrievanceEvent публікує подію життєвого циклу в Redis Pub/Sub.
func (s *Service) PublishGrievanceEvent(ev models.GrievanceEvent) error {
	if s.Redis == nil { // admin CLI працює без Redis
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, grievanceEventChannel, string(payload)).Err()
}

// SubscribeGrievanceEvents підписується на канал подій (для notifier-а).
func (s *Service) SubscribeGrievanceEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, grievanceEventChannel)
}

// ExportSnapshot зчитує повний стан у форматі двох JSON-документів.
func (s *Service) ExportSnapshot() (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := s.DB.Find(&snap.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	err := s.DB.
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Documents").
		Order("created_at desc").
		Find(&snap.Grievances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to export grievances: %w", err)
	}
	return &snap, nil
}

// ImportSnapshot завантажує стан зі snapshot-а (upsert, без видалення).
func (s *Service) ImportSnapshot(snap *models.Snapshot) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range snap.Users {
			if err := tx.Save(&snap.Users[i]).Error; err != nil {
				return fmt.Errorf("failed to import user %s: %w", snap.Users[i].Email, err)
			}
		}
		for i := range snap.Grievances {
			if err := tx.Save(&snap.Grievances[i]).Error; err != nil {
				return fmt.Errorf("failed to import grievance %s: %w", snap.Grievances[i].ID, err)
			}
		}
		return nil
	})
}
