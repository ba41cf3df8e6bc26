package server

import (
	"net/http"

	ledgerdomain "github.com/astauriabidco-maker/fle-expert/internal/ledger/domain"
	orgdomain "github.com/astauriabidco-maker/fle-expert/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type createOrganizationRequest struct {
	Name           string `json:"name" binding:"required"`
	InitialCredits int64  `json:"initial_credits"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), orgdomain.CreateOrganizationRequest{
		Name:           req.Name,
		InitialCredits: req.InitialCredits,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": org})
}

type createUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

func (s *Server) CreateOrganizationUser(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.organizationSvc.CreateUser(c.Request.Context(), orgdomain.CreateUserRequest{
		OrgID:    orgID,
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

type purchaseCreditsRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

func (s *Server) PurchaseCredits(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req purchaseCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "credit_purchase"
	}

	balance, err := s.ledgerSvc.Credit(c.Request.Context(), orgID, req.Amount, reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"balance": balance}})
}

func (s *Server) GetCreditsBalance(c *gin.Context) {
	orgID, err := s.authorizedOrg(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.ledgerSvc.GetBalance(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"balance": balance}})
}

func (s *Server) ListCreditTransactions(c *gin.Context) {
	orgID, err := s.authorizedOrg(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	txs, err := s.ledgerSvc.ListTransactions(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if txs == nil {
		txs = []ledgerdomain.CreditTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{"data": txs})
}

// authorizedOrg parses the path org id and checks it against the caller's
// token so one organization cannot read another's ledger.
func (s *Server) authorizedOrg(c *gin.Context) (snowflake.ID, error) {
	orgID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		return 0, ErrNotFound
	}
	callerOrg, ok := currentOrgID(c)
	if !ok {
		return 0, ErrUnauthorized
	}
	if callerOrg != orgID {
		return 0, ErrForbidden
	}
	return orgID, nil
}
