package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/character8/medicx-clinic-central-main/api"
	"github.com/character8/medicx-clinic-central-main/config"
	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/models"
	"github.com/character8/medicx-clinic-central-main/reports"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Service  *reports.Service
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.SessionMiddleware{
		Verifier: api.BcryptVerifier{DB: databases.NewUserDatabase(a.dbHelper)},
		Secret:   a.Config.AuthSecret,
		TTL:      api.DefaultSessionTTL,
	}
	m.SetupGoGuardian()

	svc := &reports.Service{
		Medicines: databases.NewMedicineDatabase(a.dbHelper),
		Stock:     databases.NewStockEventDatabase(a.dbHelper),
		Usage:     databases.NewUsageDatabase(a.dbHelper),
		Patients:  databases.NewPatientDatabase(a.dbHelper),
	}
	a.Service = svc

	r := mux.NewRouter()

	p := Patient{DB: databases.NewPatientDatabase(a.dbHelper), Counters: databases.NewCounterDatabase(a.dbHelper)}
	med := Medicine{DB: databases.NewMedicineDatabase(a.dbHelper), Counters: databases.NewCounterDatabase(a.dbHelper), Service: svc}
	st := Stock{Service: svc}
	u := Usage{Service: svc}
	rep := Report{DB: databases.NewReportDatabase(a.dbHelper), PDB: databases.NewPrescriptionDatabase(a.dbHelper), PatDB: databases.NewPatientDatabase(a.dbHelper), Counters: databases.NewCounterDatabase(a.dbHelper)}
	usr := User{DB: databases.NewUserDatabase(a.dbHelper)}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/login", http.HandlerFunc(m.Login)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/patient", api.Middleware(http.HandlerFunc(p.CreatePatientHandler))).Methods("POST")
	apiCreate.Handle("/patient/{patient_id}", api.Middleware(http.HandlerFunc(p.PatientByIDHandler))).Methods("GET")
	apiCreate.Handle("/patient/{patient_id}", api.Middleware(http.HandlerFunc(p.UpdatePatientHandler))).Methods("PUT")
	apiCreate.Handle("/patients", api.Middleware(http.HandlerFunc(p.PatientsHandler))).Methods("GET")

	apiCreate.Handle("/medicine", api.Middleware(http.HandlerFunc(med.CreateMedicineHandler))).Methods("POST")
	apiCreate.Handle("/medicine/{medicine_id}", api.Middleware(http.HandlerFunc(med.MedicineByIDHandler))).Methods("GET")
	apiCreate.Handle("/medicine/{medicine_id}", api.Middleware(http.HandlerFunc(med.UpdateMedicineHandler))).Methods("PUT")
	apiCreate.Handle("/medicine/{medicine_id}", api.Middleware(http.HandlerFunc(med.DeleteMedicineHandler))).Methods("DELETE")
	apiCreate.Handle("/medicines", api.Middleware(http.HandlerFunc(med.MedicinesHandler))).Methods("GET")

	apiCreate.Handle("/medicine/{medicine_id}/stock", api.Middleware(http.HandlerFunc(st.MutateStockHandler))).Methods("POST")
	apiCreate.Handle("/medicine/{medicine_id}/stock", api.Middleware(http.HandlerFunc(st.StockHistoryHandler))).Methods("GET")

	apiCreate.Handle("/usage", api.Middleware(http.HandlerFunc(u.RecordUsageHandler))).Methods("POST")
	apiCreate.Handle("/usage/reports", api.Middleware(http.HandlerFunc(u.GroupedUsageHandler))).Methods("GET")

	apiCreate.Handle("/report", api.Middleware(http.HandlerFunc(rep.CreateReportHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(rep.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/reports/patient/{patient_id}", api.Middleware(http.HandlerFunc(rep.ReportsByPatientIDHandler))).Methods("GET")
	apiCreate.Handle("/reports/search", api.Middleware(http.HandlerFunc(rep.ReportsSearchHandler))).Methods("GET")

	apiCreate.Handle("/user", api.RequireRole(http.HandlerFunc(usr.UserCreateHandler), models.RoleAdmin)).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("medicx-clinic-api has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

func getPage(r *http.Request) int {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		var err error
		page, err = strconv.Atoi(raw)
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
			return 1
		}
		if page < 1 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", page))
			return 1
		}
	}
	return page
}

func errMissingField(field string) error {
	return fmt.Errorf("missing required field %q", field)
}

func getLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	return limit
}

// newPagination computes the list-response pagination block for an in-process
// filtered result set.
func newPagination(total, page, limit int) models.Pagination {
	limit64 := int64(limit)
	return models.Pagination{
		CurrentPage:  int64(page),
		TotalPages:   (int64(total) + limit64 - 1) / limit64,
		TotalRecords: int64(total),
		Limit:        limit64,
	}
}
