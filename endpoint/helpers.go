package endpoint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medichain/healthcare-backend/fabric"
	"github.com/medichain/healthcare-backend/middleware"
	"github.com/medichain/healthcare-backend/util"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// acquireContractOrRespond resolves a ledger contract handle for the given
// identity label, responding with a server error when the session manager is
// missing or the session cannot be established.
func acquireContractOrRespond(c *gin.Context, label string) (fabric.Contract, bool) {
	mgr := middleware.GetLedger(c)
	if mgr == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Ledger connection not available", Err: fmt.Errorf("session manager is nil")})
		return nil, false
	}

	contract, err := mgr.Acquire(label)
	if err != nil {
		util.LogLedgerFailure(label, "acquire", err)
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to connect to ledger", Err: err})
		return nil, false
	}
	return contract, true
}

// isLedgerNotFound matches the chaincode's failure texts for absent records
// ("does not exist" for patients/doctors, "not found" for access keys).
func isLedgerNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "not found")
}

// isLedgerDuplicate matches the chaincode's "already exists" failure for
// re-registered identifiers.
func isLedgerDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// decodeLedgerJSON unmarshals a transaction result into dst, responding with
// a server error on malformed payloads.
func decodeLedgerJSON(c *gin.Context, payload []byte, dst interface{}) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Malformed ledger response", Err: err})
		return false
	}
	return true
}
