package endpoint

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/medichain/healthcare-backend/config"
	"github.com/medichain/healthcare-backend/util"
)

type RegisterDoctorRequest struct {
	DoctorID       string `json:"doctor_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	LicenseNumber  string `json:"license_number" binding:"required"`
	Specialization string `json:"specialization" binding:"required"`
	HospitalName   string `json:"hospital_name" binding:"required"`
	Password       string `json:"password" binding:"required"`
}

// RegisterDoctor godoc
// @Summary      Register a doctor
// @Description  Write the doctor record to the ledger and store the login credential
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request body RegisterDoctorRequest true "Doctor details"
// @Success      201 {object} util.APIResponse "Doctor registered"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      409 {object} util.APIResponse "Identifier already registered"
// @Failure      500 {object} util.APIResponse "Ledger or database failure"
// @Router       /api/doctor/register [post]
func RegisterDoctor(c *gin.Context) {
	var req RegisterDoctorRequest
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

	// Ledger first, credential store second; no rollback on partial failure.
	_, err := contract.SubmitTransaction("RegisterDoctor",
		req.DoctorID,
		req.Name,
		req.LicenseNumber,
		req.Specialization,
		req.HospitalName,
	)
	if err != nil {
		util.LogLedgerFailure(config.LoadConfig().AdminIdentity, "RegisterDoctor", err)
		if isLedgerDuplicate(err) {
			util.CallDuplicateError(c, util.APIErrorParams{Msg: "Doctor already registered", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to register doctor on ledger", Err: err})
		return
	}

	if err := createDoctorCredential(db, req); err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			util.CallDuplicateError(c, util.APIErrorParams{Msg: "Doctor already registered", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store doctor credential", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRegistration,
		UserID:    req.DoctorID,
		Role:      util.RoleDoctor,
		IP:        c.ClientIP(),
		Message:   "Doctor registered",
	})

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Doctor registered",
		Data: gin.H{"doctor_id": req.DoctorID},
	})
}

// GetDoctor godoc
// @Summary      Fetch a doctor
// @Description  Read the doctor record from the ledger
// @Tags         Doctor
// @Produce      json
// @Security     BearerAuth
// @Param        doctorID path string true "Doctor identifier"
// @Success      200 {object} util.APIResponse "Doctor record"
// @Failure      404 {object} util.APIResponse "Doctor not found on ledger"
// @Router       /api/doctor/{doctorID} [get]
func GetDoctor(c *gin.Context) {
	contract, ok := acquireContractOrRespond(c, config.LoadConfig().AdminIdentity)
	if !ok {
		return
	}

	result, err := contract.EvaluateTransaction("GetDoctor", c.Param("doctorID"))
	if err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
		return
	}

	var record map[string]interface{}
	if !decodeLedgerJSON(c, result, &record) {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor retrieved", Data: record})
}
