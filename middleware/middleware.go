package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medichain/healthcare-backend/fabric"
	"github.com/medichain/healthcare-backend/util"
)

const (
	dbContextKey      = "db"
	ledgerContextKey  = "ledger"
	subjectContextKey = "subject_id"
	roleContextKey    = "subject_role"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware injects the shared gorm DB into the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbContextKey, db)
		c.Next()
	}
}

// GetDB retrieves the gorm DB from the request context, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(dbContextKey); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return nil
}

// LedgerMiddleware injects the ledger contract provider into the request context.
func LedgerMiddleware(mgr fabric.ContractProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ledgerContextKey, mgr)
		c.Next()
	}
}

// GetLedger retrieves the ledger contract provider from the request context, or nil.
func GetLedger(c *gin.Context) fabric.ContractProvider {
	if v, ok := c.Get(ledgerContextKey); ok {
		if mgr, ok := v.(fabric.ContractProvider); ok {
			return mgr
		}
	}
	return nil
}

// AuthMiddleware guards protected routes. It extracts the bearer token from
// the Authorization header, validates it, and stores the decoded subject id
// and role in the request context for the handler.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "No token provided",
				Err: fmt.Errorf("missing bearer token"),
			})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		id, role, err := util.ParseToken(token)
		if err != nil {
			util.LogUnauthorizedAccess("", c.ClientIP(), c.Request.URL.Path, "invalid or expired token")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid or expired token",
				Err: err,
			})
			c.Abort()
			return
		}

		c.Set(subjectContextKey, id)
		c.Set(roleContextKey, role)
		c.Next()
	}
}

// GetSubject returns the authenticated subject id and role set by AuthMiddleware.
func GetSubject(c *gin.Context) (id, role string, ok bool) {
	idVal, idOK := c.Get(subjectContextKey)
	roleVal, roleOK := c.Get(roleContextKey)
	if !idOK || !roleOK {
		return "", "", false
	}
	id, idOK = idVal.(string)
	role, roleOK = roleVal.(string)
	return id, role, idOK && roleOK
}
