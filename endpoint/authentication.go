package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medichain/healthcare-backend/model"
	"github.com/medichain/healthcare-backend/util"
)

// ErrDuplicateIdentifier is returned when a registration reuses a primary
// identifier or a globally unique attribute (national id, license number).
var ErrDuplicateIdentifier = errors.New("identifier already exists")

// errInvalidCredentials is deliberately the only failure surfaced by login,
// whether the identifier is unknown, the record inactive, or the password
// wrong.
var errInvalidCredentials = errors.New("invalid credentials")

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	Role    string      `json:"role"`
	Profile interface{} `json:"profile"`
}

// LoginPatient godoc
// @Summary      Patient login
// @Description  Authenticate a patient with identifier and password
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid credentials"
// @Router       /api/auth/login/patient [post]
func LoginPatient(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var patient model.Patient
	err := db.First(&patient, "patient_id = ?", req.ID).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	if err == gorm.ErrRecordNotFound || !patient.IsActive || !util.VerifyPassword(req.Password, patient.PasswordHash) {
		respondInvalidCredentials(c, req.ID, util.RolePatient)
		return
	}

	token, ok := finalizeLogin(c, db, &patient, patient.PatientID, util.RolePatient)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Login successful",
		Data: LoginResponse{Token: token, Role: util.RolePatient, Profile: gin.H{
			"patient_id":    patient.PatientID,
			"name":          patient.Name,
			"date_of_birth": patient.DateOfBirth,
			"phone":         patient.Phone,
			"national_id":   patient.NationalID,
		}},
	})
}

// LoginDoctor godoc
// @Summary      Doctor login
// @Description  Authenticate a doctor with identifier and password
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid credentials"
// @Router       /api/auth/login/doctor [post]
func LoginDoctor(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor model.Doctor
	err := db.First(&doctor, "doctor_id = ?", req.ID).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	if err == gorm.ErrRecordNotFound || !doctor.IsActive || !util.VerifyPassword(req.Password, doctor.PasswordHash) {
		respondInvalidCredentials(c, req.ID, util.RoleDoctor)
		return
	}

	token, ok := finalizeLogin(c, db, &doctor, doctor.DoctorID, util.RoleDoctor)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Login successful",
		Data: LoginResponse{Token: token, Role: util.RoleDoctor, Profile: gin.H{
			"doctor_id":      doctor.DoctorID,
			"name":           doctor.Name,
			"license_number": doctor.LicenseNumber,
			"specialization": doctor.Specialization,
			"hospital_name":  doctor.HospitalName,
			"is_verified":    doctor.IsVerified,
		}},
	})
}

// respondInvalidCredentials is the single 401 path for every login failure so
// responses do not reveal which check rejected the attempt.
func respondInvalidCredentials(c *gin.Context, id, role string) {
	util.LogLoginFailure(id, role, c.ClientIP(), c.Request.UserAgent(), "invalid credentials")
	util.CallUserNotAuthorized(c, util.APIErrorParams{
		Msg: "Invalid credentials",
		Err: errInvalidCredentials,
	})
}

// finalizeLogin stamps last_login and issues the session token.
func finalizeLogin(c *gin.Context, db *gorm.DB, record interface{}, id, role string) (string, bool) {
	now := time.Now()
	if err := db.Model(record).Update("last_login", &now).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update login timestamp", Err: err})
		return "", false
	}

	token, err := util.CreateToken(id, role)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return "", false
	}

	util.LogLoginSuccess(id, role, c.ClientIP(), c.Request.UserAgent())
	return token, true
}

// createPatientCredential stores the patient's login credential, hashing the
// plaintext password exactly once at this boundary.
func createPatientCredential(db *gorm.DB, req RegisterPatientRequest) error {
	var count int64
	if err := db.Model(&model.Patient{}).
		Where("patient_id = ? OR national_id = ?", req.PatientID, req.NationalID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: patient %s", ErrDuplicateIdentifier, req.PatientID)
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return err
	}

	patient := model.Patient{
		PatientID:             req.PatientID,
		Name:                  util.NormalizeName(req.Name),
		DateOfBirth:           req.DateOfBirth,
		Phone:                 req.Phone,
		NationalID:            req.NationalID,
		PasswordHash:          hash,
		FingerprintTemplateID: req.FingerprintTemplateID,
		IsActive:              true,
	}
	return db.Create(&patient).Error
}

// createDoctorCredential stores the doctor's login credential, hashing the
// plaintext password exactly once at this boundary.
func createDoctorCredential(db *gorm.DB, req RegisterDoctorRequest) error {
	var count int64
	if err := db.Model(&model.Doctor{}).
		Where("doctor_id = ? OR license_number = ?", req.DoctorID, req.LicenseNumber).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: doctor %s", ErrDuplicateIdentifier, req.DoctorID)
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return err
	}

	doctor := model.Doctor{
		DoctorID:       req.DoctorID,
		Name:           util.NormalizeName(req.Name),
		LicenseNumber:  req.LicenseNumber,
		Specialization: req.Specialization,
		HospitalName:   req.HospitalName,
		PasswordHash:   hash,
		IsActive:       true,
	}
	return db.Create(&doctor).Error
}
