package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sealvault/sealvault/internal/common"
)

// statusForError maps core sentinel errors onto HTTP status codes. Anything
// unrecognized is a storage or programming failure and surfaces as 500,
// which callers may retry.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidInput), errors.Is(err, common.ErrorInvalidPin):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyRegistered),
		errors.Is(err, common.ErrorDuplicateName),
		errors.Is(err, common.ErrorNotRegistered),
		errors.Is(err, common.ErrorQuotaExceeded):
		return http.StatusConflict
	case errors.Is(err, common.ErrorEntryTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), err.Error())
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

type sessionRequest struct {
	Subject string `json:"subject" binding:"required"`
	Email   string `json:"email"`
}

// CreateSession resolves an externally authenticated subject to a local user
// and mints an access token for it. In production this endpoint sits behind
// the OAuth sign-in flow; it is the handoff point between that collaborator
// and the vault core.
func (s *Server) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	user, err := s.users.GetOrCreate(ctx, req.Subject, req.Email)
	if err != nil {
		s.fail(c, err)
		return
	}

	token, err := s.users.IssueToken(ctx, user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(ctx, "Session created", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
}

type registerVaultRequest struct {
	Pin      string `json:"pin"`
	Metadata []byte `json:"metadata"`
}

func (s *Server) RegisterVault(c *gin.Context) {
	var req registerVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(userIDKey)

	if err := s.vault.Register(ctx, userID, req.Pin, req.Metadata); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(ctx, "Vault registered", "user_id", userID)
	c.Status(http.StatusCreated)
}

type recoverVaultRequest struct {
	Pin string `json:"pin"`
}

func (s *Server) RecoverVault(c *gin.Context) {
	var req recoverVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blob, err := s.vault.Recover(c.Request.Context(), c.GetString(userIDKey), req.Pin)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metadata": blob})
}

type refreshVaultRequest struct {
	Metadata []byte `json:"metadata"`
}

func (s *Server) RefreshVault(c *gin.Context) {
	var req refreshVaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(userIDKey)

	if err := s.vault.Refresh(ctx, userID, req.Metadata); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(ctx, "Vault metadata refreshed", "user_id", userID)
	c.Status(http.StatusOK)
}

func (s *Server) VaultStatus(c *gin.Context) {
	status, err := s.vault.Status(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := gin.H{"has_vault": status.HasVault}
	if status.HasVault {
		resp["metadata"] = status.Metadata
	}
	c.JSON(http.StatusOK, resp)
}

type addEntryRequest struct {
	Name         string `json:"name"`
	Ciphertext   []byte `json:"ciphertext"`
	DeletionHash []byte `json:"deletion_hash"`
}

func (s *Server) AddEntry(c *gin.Context) {
	var req addEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(userIDKey)

	if err := s.entries.Add(ctx, userID, req.Name, req.Ciphertext, req.DeletionHash); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(ctx, "Entry added", "user_id", userID, "name", req.Name)
	c.Status(http.StatusCreated)
}

func (s *Server) ListEntryNames(c *gin.Context) {
	names, err := s.entries.ListNames(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"names": names})
}

type entryResponse struct {
	Name       string `json:"name"`
	Ciphertext []byte `json:"ciphertext"`
}

func (s *Server) GetEntries(c *gin.Context) {
	entries, err := s.entries.GetAll(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, entryResponse{Name: e.Name, Ciphertext: e.Ciphertext})
	}
	c.JSON(http.StatusOK, gin.H{"entries": resp})
}

type deleteEntryRequest struct {
	Preimage []byte `json:"preimage"`
}

func (s *Server) DeleteEntry(c *gin.Context) {
	var req deleteEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(userIDKey)
	name := c.Param("name")

	if err := s.entries.Delete(ctx, userID, name, req.Preimage); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(ctx, "Entry deleted", "user_id", userID, "name", name)
	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(userIDKey)

	if err := s.users.Delete(ctx, userID); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(ctx, "User deleted", "user_id", userID)
	c.Status(http.StatusNoContent)
}
