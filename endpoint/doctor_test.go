package endpoint

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medichain/healthcare-backend/model"
	"github.com/medichain/healthcare-backend/util"
)

func TestRegisterDoctorThenLogin(t *testing.T) {
	r, db, ledger := setupEndpointTest(t)

	w := performJSON(r, http.MethodPost, "/api/doctor/register", validDoctorRequest(), "")
	assert.Equal(t, http.StatusCreated, w.Code)

	call := ledger.lastCall(t)
	assert.Equal(t, "admin", call.Label)
	assert.Equal(t, "RegisterDoctor", call.Name)
	assert.Equal(t, []string{"D1", "Dr. Strange", "LIC-001", "Cardiology", "Apollo"}, call.Args)

	var doctor model.Doctor
	assert.NoError(t, db.First(&doctor, "doctor_id = ?", "D1").Error)
	assert.NotEqual(t, "doctorpw", doctor.PasswordHash)
	assert.False(t, doctor.IsVerified, "a fresh doctor must start unverified")

	w = performJSON(r, http.MethodPost, "/api/auth/login/doctor", LoginRequest{ID: "D1", Password: "doctorpw"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	id, role, err := util.ParseToken(data["token"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "D1", id)
	assert.Equal(t, util.RoleDoctor, role)
}

func TestRegisterDoctorValidation(t *testing.T) {
	r, _, ledger := setupEndpointTest(t)

	req := validDoctorRequest()
	req.LicenseNumber = ""
	w := performJSON(r, http.MethodPost, "/api/doctor/register", req, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ledger.Calls)
}

func TestRegisterDoctorDuplicateLicense(t *testing.T) {
	r, db, _ := setupEndpointTest(t)

	w := performJSON(r, http.MethodPost, "/api/doctor/register", validDoctorRequest(), "")
	assert.Equal(t, http.StatusCreated, w.Code)

	second := validDoctorRequest()
	second.DoctorID = "D2"
	w = performJSON(r, http.MethodPost, "/api/doctor/register", second, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&model.Doctor{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetDoctorNotFound(t *testing.T) {
	r, _, ledger := setupEndpointTest(t)
	ledger.EvalErr["GetDoctor"] = errors.New("doctor D404 does not exist")

	token := testToken(t, "P1", util.RolePatient)
	w := performJSON(r, http.MethodGet, "/api/doctor/D404", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDoctorSuccess(t *testing.T) {
	r, _, ledger := setupEndpointTest(t)
	ledger.EvalResult["GetDoctor"] = []byte(`{"doctorID":"D1","name":"Dr. Strange","verified":true}`)

	token := testToken(t, "D1", util.RoleDoctor)
	w := performJSON(r, http.MethodGet, "/api/doctor/D1", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	record := resp.Data.(map[string]interface{})
	assert.Equal(t, true, record["verified"])
}
