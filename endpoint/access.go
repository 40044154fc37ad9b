package endpoint

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medichain/healthcare-backend/config"
	"github.com/medichain/healthcare-backend/middleware"
	"github.com/medichain/healthcare-backend/model"
	"github.com/medichain/healthcare-backend/util"
)

// VerifyDoctor godoc
// @Summary      Verify a doctor
// @Description  Flip the doctor's verified flag on the ledger. Only the audit
// @Description  organization's identity is accepted by the chaincode; the
// @Description  handler always submits under that identity so the ledger
// @Description  enforces the restriction.
// @Tags         Access
// @Produce      json
// @Security     BearerAuth
// @Param        doctorID path string true "Doctor identifier"
// @Success      200 {object} util.APIResponse "Doctor verified"
// @Failure      403 {object} util.APIResponse "Verification rejected by the ledger"
// @Router       /api/access/verify/{doctorID} [post]
func VerifyDoctor(c *gin.Context) {
	doctorID := c.Param("doctorID")
	auditIdentity := config.LoadConfig().AuditIdentity

	contract, ok := acquireContractOrRespond(c, auditIdentity)
	if !ok {
		return
	}

	if _, err := contract.SubmitTransaction("VerifyDoctor", doctorID); err != nil {
		util.LogLedgerFailure(auditIdentity, "VerifyDoctor", err)
		util.CallUserForbidden(c, util.APIErrorParams{Msg: "Doctor verification rejected", Err: err})
		return
	}

	// Mirror the one-way flag flip onto the credential row. The WHERE clause
	// keeps the transition monotonic: a second verification is a no-op here.
	if db := middleware.GetDB(c); db != nil {
		now := time.Now()
		db.Model(&model.Doctor{}).
			Where("doctor_id = ? AND is_verified = ?", doctorID, false).
			Updates(map[string]interface{}{"is_verified": true, "verified_at": &now})
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventDoctorVerified,
		UserID:    doctorID,
		Role:      util.RoleDoctor,
		IP:        c.ClientIP(),
		Message:   "Doctor verified by audit organization",
	})

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctor verified",
		Data: gin.H{"doctor_id": doctorID, "verified": true},
	})
}

type GrantAccessRequest struct {
	PatientID     string `json:"patient_id" binding:"required"`
	DoctorID      string `json:"doctor_id" binding:"required"`
	DurationHours int    `json:"duration_hours" binding:"required,gt=0"`
	Purpose       string `json:"purpose" binding:"required"`
}

// GrantAccess godoc
// @Summary      Grant record access
// @Description  Grant a verified doctor time-bound access to a patient's records
// @Tags         Access
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GrantAccessRequest true "Grant details"
// @Success      201 {object} util.APIResponse "Access granted"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      404 {object} util.APIResponse "Patient or doctor not found"
// @Router       /api/access/grant [post]
func GrantAccess(c *gin.Context) {
	var req GrantAccessRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	result, err := contract.SubmitTransaction("GrantAccess",
		req.PatientID,
		req.DoctorID,
		strconv.Itoa(req.DurationHours),
		req.Purpose,
	)
	if err != nil {
		if isLedgerNotFound(err) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient or doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to grant access", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Access granted",
		Data: gin.H{"access_key": string(result)},
	})
}

type RevokeAccessRequest struct {
	AccessKey string `json:"access_key" binding:"required"`
}

// RevokeAccess godoc
// @Summary      Revoke record access
// @Description  Revoke a previously granted access key
// @Tags         Access
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RevokeAccessRequest true "Access key"
// @Success      200 {object} util.APIResponse "Access revoked"
// @Failure      404 {object} util.APIResponse "Access key not found"
// @Router       /api/access/revoke [post]
func RevokeAccess(c *gin.Context) {
	var req RevokeAccessRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	if _, err := contract.SubmitTransaction("RevokeAccess", req.AccessKey); err != nil {
		if isLedgerNotFound(err) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Access key not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to revoke access", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Access revoked",
		Data: gin.H{"access_key": req.AccessKey},
	})
}

// CheckAccess godoc
// @Summary      Check an access grant
// @Description  Evaluate whether an access key is still valid
// @Tags         Access
// @Produce      json
// @Security     BearerAuth
// @Param        accessKey path string true "Access key"
// @Success      200 {object} util.APIResponse "Validity result"
// @Router       /api/access/check/{accessKey} [get]
func CheckAccess(c *gin.Context) {
	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	result, err := contract.EvaluateTransaction("CheckAccessValidity", c.Param("accessKey"))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check access", Err: err})
		return
	}

	var validity map[string]interface{}
	if !decodeLedgerJSON(c, result, &validity) {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Access checked", Data: validity})
}

// ListPatientAccess godoc
// @Summary      List active access grants
// @Description  List all unexpired, unrevoked access grants for a patient
// @Tags         Access
// @Produce      json
// @Security     BearerAuth
// @Param        patientID path string true "Patient identifier"
// @Success      200 {object} util.APIResponse "Active grants"
// @Router       /api/access/patient/{patientID} [get]
func ListPatientAccess(c *gin.Context) {
	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	result, err := contract.EvaluateTransaction("GetActiveAccessesForPatient", c.Param("patientID"))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list access grants", Err: err})
		return
	}

	var grants []map[string]interface{}
	if len(result) > 0 && !decodeLedgerJSON(c, result, &grants) {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Active access grants", Data: grants})
}

// AuditTrail godoc
// @Summary      Patient audit trail
// @Description  Fetch the ledger audit trail for a patient
// @Tags         Access
// @Produce      json
// @Security     BearerAuth
// @Param        patientID path string true "Patient identifier"
// @Success      200 {object} util.APIResponse "Audit log entries"
// @Router       /api/access/audit/{patientID} [get]
func AuditTrail(c *gin.Context) {
	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	result, err := contract.EvaluateTransaction("GetAuditTrail", c.Param("patientID"))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch audit trail", Err: err})
		return
	}

	var logs []map[string]interface{}
	if len(result) > 0 && !decodeLedgerJSON(c, result, &logs) {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Audit trail", Data: logs})
}
