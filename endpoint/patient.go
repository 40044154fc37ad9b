package endpoint

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medichain/healthcare-backend/config"
	"github.com/medichain/healthcare-backend/util"
)

type RegisterPatientRequest struct {
	PatientID             string `json:"patient_id" binding:"required"`
	Name                  string `json:"name" binding:"required"`
	DateOfBirth           string `json:"date_of_birth" binding:"required"`
	Phone                 string `json:"phone" binding:"required"`
	NationalID            string `json:"national_id" binding:"required,len=12"`
	Password              string `json:"password" binding:"required"`
	FingerprintTemplateID *int   `json:"fingerprint_template_id"`
}

// RegisterPatient godoc
// @Summary      Register a patient
// @Description  Write the patient record to the ledger and store the login credential
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Param        request body RegisterPatientRequest true "Patient details"
// @Success      201 {object} util.APIResponse "Patient registered"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      409 {object} util.APIResponse "Identifier already registered"
// @Failure      500 {object} util.APIResponse "Ledger or database failure"
// @Router       /api/patient/register [post]
func RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	fingerprintID := 0
	if req.FingerprintTemplateID != nil {
		fingerprintID = *req.FingerprintTemplateID
	}

	// Ledger write happens before the credential-store write. A failure in
	// the second step leaves an orphaned ledger entry; there is no
	// compensating rollback.
	_, err := contract.SubmitTransaction("RegisterPatient",
		req.PatientID,
		req.Name,
		req.DateOfBirth,
		req.Phone,
		req.NationalID,
		strconv.Itoa(fingerprintID),
	)
	if err != nil {
		util.LogLedgerFailure(config.LoadConfig().AdminIdentity, "RegisterPatient", err)
		if isLedgerDuplicate(err) {
			util.CallDuplicateError(c, util.APIErrorParams{Msg: "Patient already registered", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to register patient on ledger", Err: err})
		return
	}

	if err := createPatientCredential(db, req); err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			util.CallDuplicateError(c, util.APIErrorParams{Msg: "Patient already registered", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store patient credential", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRegistration,
		UserID:    req.PatientID,
		Role:      util.RolePatient,
		IP:        c.ClientIP(),
		Message:   "Patient registered",
	})

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Patient registered",
		Data: gin.H{"patient_id": req.PatientID},
	})
}

// GetPatient godoc
// @Summary      Fetch a patient
// @Description  Read the patient record from the ledger
// @Tags         Patient
// @Produce      json
// @Security     BearerAuth
// @Param        patientID path string true "Patient identifier"
// @Success      200 {object} util.APIResponse "Patient record"
// @Failure      404 {object} util.APIResponse "Patient not found on ledger"
// @Router       /api/patient/{patientID} [get]
func GetPatient(c *gin.Context) {
	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	result, err := contract.EvaluateTransaction("GetPatient", c.Param("patientID"))
	if err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
		return
	}

	var record map[string]interface{}
	if !decodeLedgerJSON(c, result, &record) {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: record})
}
