package endpoint

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/medichain/healthcare-backend/config"
	"github.com/medichain/healthcare-backend/fabric"
	"github.com/medichain/healthcare-backend/middleware"
	"github.com/medichain/healthcare-backend/model"
	"github.com/medichain/healthcare-backend/util"
)

// endpointTestModels defines the set of models migrated for endpoint tests
var endpointTestModels = []interface{}{
	&model.Patient{},
	&model.Doctor{},
	&model.SecurityLog{},
}

type txCall struct {
	Label string
	Name  string
	Args  []string
}

// stubContract records transactions against a stub ledger.
type stubContract struct {
	ledger *stubLedger
	label  string
}

func (c *stubContract) SubmitTransaction(name string, args ...string) ([]byte, error) {
	c.ledger.Calls = append(c.ledger.Calls, txCall{Label: c.label, Name: name, Args: args})
	if err, ok := c.ledger.SubmitErr[name]; ok {
		return nil, err
	}
	if res, ok := c.ledger.SubmitResult[name]; ok {
		return res, nil
	}
	return []byte{}, nil
}

func (c *stubContract) EvaluateTransaction(name string, args ...string) ([]byte, error) {
	c.ledger.Calls = append(c.ledger.Calls, txCall{Label: c.label, Name: name, Args: args})
	if err, ok := c.ledger.EvalErr[name]; ok {
		return nil, err
	}
	if res, ok := c.ledger.EvalResult[name]; ok {
		return res, nil
	}
	return []byte(`{}`), nil
}

// stubLedger implements fabric.ContractProvider against canned results.
type stubLedger struct {
	Calls        []txCall
	Acquired     []string
	AcquireErr   map[string]error
	SubmitErr    map[string]error
	SubmitResult map[string][]byte
	EvalErr      map[string]error
	EvalResult   map[string][]byte
}

func newStubLedger() *stubLedger {
	return &stubLedger{
		AcquireErr:   map[string]error{},
		SubmitErr:    map[string]error{},
		SubmitResult: map[string][]byte{},
		EvalErr:      map[string]error{},
		EvalResult:   map[string][]byte{},
	}
}

func (s *stubLedger) Acquire(label string) (fabric.Contract, error) {
	if err, ok := s.AcquireErr[label]; ok {
		return nil, err
	}
	s.Acquired = append(s.Acquired, label)
	return &stubContract{ledger: s, label: label}, nil
}

func (s *stubLedger) Release(label string) {}

func (s *stubLedger) ReleaseAll() {}

// lastCall returns the most recent ledger transaction, failing the test when
// none was made.
func (s *stubLedger) lastCall(t *testing.T) txCall {
	t.Helper()
	if len(s.Calls) == 0 {
		t.Fatal("expected a ledger transaction, got none")
	}
	return s.Calls[len(s.Calls)-1]
}

// setupEndpointTest returns a router wired like main.go, a test database, and
// the stub ledger behind it.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB, *stubLedger) {
	t.Helper()
	t.Setenv("APPENV", "test")
	t.Setenv("JWTSECRET", "test-secret-123")
	util.SetJWTSecret("test-secret-123")
	gin.SetMode(gin.TestMode)

	db, err := config.ConnectMySQL()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}

	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	for _, m := range endpointTestModels {
		db.Where("1 = 1").Delete(m)
	}

	t.Cleanup(func() {
		for _, m := range endpointTestModels {
			_ = db.Migrator().DropTable(m)
		}
	})

	ledger := newStubLedger()

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.LedgerMiddleware(ledger))

	r.POST("/api/auth/login/patient", LoginPatient)
	r.POST("/api/auth/login/doctor", LoginDoctor)

	r.POST("/api/patient/register", RegisterPatient)
	r.GET("/api/patient/:patientID", middleware.AuthMiddleware(), GetPatient)

	r.POST("/api/doctor/register", RegisterDoctor)
	r.GET("/api/doctor/:doctorID", middleware.AuthMiddleware(), GetDoctor)

	access := r.Group("/api/access", middleware.AuthMiddleware())
	access.POST("/verify/:doctorID", VerifyDoctor)
	access.POST("/grant", GrantAccess)
	access.POST("/revoke", RevokeAccess)
	access.GET("/check/:accessKey", CheckAccess)
	access.GET("/patient/:patientID", ListPatientAccess)
	access.GET("/audit/:patientID", AuditTrail)

	return r, db, ledger
}

// performJSON issues a request with an optional JSON body and bearer token.
func performJSON(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) util.APIResponse {
	t.Helper()
	var resp util.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// testToken issues a bearer token for protected-route tests.
func testToken(t *testing.T, id, role string) string {
	t.Helper()
	token, err := util.CreateToken(id, role)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return token
}

func validPatientRequest() RegisterPatientRequest {
	return RegisterPatientRequest{
		PatientID:   "P1",
		Name:        "A",
		DateOfBirth: "2000-01-01",
		Phone:       "555",
		NationalID:  "123456789012",
		Password:    "pw",
	}
}

func validDoctorRequest() RegisterDoctorRequest {
	return RegisterDoctorRequest{
		DoctorID:       "D1",
		Name:           "Dr. Strange",
		LicenseNumber:  "LIC-001",
		Specialization: "Cardiology",
		HospitalName:   "Apollo",
		Password:       "doctorpw",
	}
}
