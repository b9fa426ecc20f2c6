package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"grievgo/backend/internal/ai"
	"grievgo/backend/internal/config"
	"grievgo/backend/internal/lifecycle"
	"grievgo/backend/internal/localization"
	"grievgo/backend/internal/models"
)

type fileGrievanceRequest struct {
	Organization string `json:"organization" binding:"required"`
	Description  string `json:"description" binding:"required"`
	Documents    []struct {
		Name    string `json:"name"`
		Content []byte `json:"content"`
	} `json:"documents"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// FileGrievance приймає скаргу від громадянина через типову форму
func (h *Handler) FileGrievance(c *gin.Context) {
	claims, ok := h.citizenClaims(c)
	if !ok {
		return
	}

	var req fileGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	docs := make([]models.GrievanceDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, models.GrievanceDocument{Name: d.Name, Content: d.Content})
	}

	grievance, err := h.Lifecycle.Create(lifecycle.Draft{
		ComplainantName:  claims.Name,
		ComplainantEmail: claims.Email,
		Organization:     req.Organization,
		Description:      req.Description,
		Documents:        docs,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": h.msg(c, localization.KeyErrDuplicate)})
		case errors.Is(err, lifecycle.ErrSpam):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": h.msg(c, localization.KeyErrSpam)})
		case errors.Is(err, lifecycle.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": h.msg(c, localization.KeyErrValidation), "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to file grievance"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"grievance": grievance})
}

// ListMyGrievances повертає скарги поточного громадянина
func (h *Handler) ListMyGrievances(c *gin.Context) {
	claims, ok := h.citizenClaims(c)
	if !ok {
		return
	}

	grievances, err := h.Storage.GetGrievancesByEmail(models.NormalizeEmail(claims.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load grievances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"grievances": grievances})
}

// loadVisibleGrievance завантажує скаргу, якщо claims мають право її бачити
func (h *Handler) loadVisibleGrievance(c *gin.Context, claims *authClaims) (*models.Grievance, bool) {
	grievance, err := h.Storage.GetGrievanceByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load grievance"})
		return nil, false
	}
	if grievance == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": h.msg(c, localization.KeyErrNotFound)})
		return nil, false
	}

	switch claims.Role {
	case models.RoleCitizen:
		if grievance.ComplainantEmail != models.NormalizeEmail(claims.Email) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your grievance"})
			return nil, false
		}
	case models.RoleAdmin:
		if grievance.Organization != claims.Department {
			c.JSON(http.StatusForbidden, gin.H{"error": "Grievance belongs to another department"})
			return nil, false
		}
	}

	return grievance, true
}

// GetGrievance повертає одну скаргу з повною історією статусів
func (h *Handler) GetGrievance(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}

	grievance, ok := h.loadVisibleGrievance(c, claims)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"grievance": grievance})
}

// DownloadDocument віддає вміст прикріпленого документа
func (h *Handler) DownloadDocument(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}

	if _, ok := h.loadVisibleGrievance(c, claims); !ok {
		return
	}

	doc, err := h.Storage.GetDocument(c.Param("id"), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", doc.Content)
}

// ListDepartments повертає впорядкований список відомих департаментів
func (h *Handler) ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"departments": config.Departments})
}

// ListDepartmentGrievances повертає скарги департаменту адміністратора
func (h *Handler) ListDepartmentGrievances(c *gin.Context) {
	claims, ok := h.adminClaims(c)
	if !ok {
		return
	}

	grievances, err := h.Storage.GetGrievancesByOrganization(claims.Department)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load grievances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"grievances": grievances})
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

// TransitionGrievance змінює статус скарги від імені адміністратора
func (h *Handler) TransitionGrievance(c *gin.Context) {
	claims, ok := h.adminClaims(c)
	if !ok {
		return
	}

	if _, ok := h.loadVisibleGrievance(c, claims); !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	grievance, err := h.Lifecycle.Transition(c.Param("id"), models.Status(req.Status), req.Reason, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": h.msg(c, localization.KeyErrNotFound)})
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, lifecycle.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": h.msg(c, localization.KeyErrValidation), "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"grievance": grievance})
}

// GenerateSolution просить модель скласти план вирішення та зберігає його
func (h *Handler) GenerateSolution(c *gin.Context) {
	claims, ok := h.adminClaims(c)
	if !ok {
		return
	}

	grievance, ok := h.loadVisibleGrievance(c, claims)
	if !ok {
		return
	}

	solution := h.Assistant.Generate(ai.SolutionPrompt(grievance.Organization, grievance.Description))
	if solution == config.AIUnavailableMessage {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": h.msg(c, localization.KeyAIUnavailable)})
		return
	}

	grievance, err := h.Lifecycle.AttachSolution(grievance.ID, solution)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save solution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"grievance": grievance})
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskAboutGrievance відповідає на питання щодо однієї скарги
func (h *Handler) AskAboutGrievance(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}

	grievance, ok := h.loadVisibleGrievance(c, claims)
	if !ok {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	answer := h.Assistant.Generate(ai.AnswerPrompt(grievance.Description, grievance.DocumentNames, req.Question))
	if answer == config.AIUnavailableMessage {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": h.msg(c, localization.KeyAIUnavailable)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
