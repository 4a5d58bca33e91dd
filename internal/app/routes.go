package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Authentication
	r.HandleFunc("/api/auth/login", deps.WizardHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/logout", deps.WizardHandler.Logout).Methods("POST")

	// Report wizard
	r.HandleFunc("/api/wizard", deps.WizardHandler.CurrentState).Methods("GET")
	r.HandleFunc("/api/wizard/period", deps.WizardHandler.SetPeriod).Methods("POST")
	r.HandleFunc("/api/wizard/clients", deps.WizardHandler.ListClients).Methods("GET")
	r.HandleFunc("/api/wizard/projects", deps.WizardHandler.ListProjects).Queries("client", "{client}").Methods("GET")
	r.HandleFunc("/api/wizard/selection", deps.WizardHandler.Select).Methods("POST")
	r.HandleFunc("/api/wizard/rows", deps.WizardHandler.ConfirmRows).Methods("POST")
	r.HandleFunc("/api/wizard/report", deps.WizardHandler.BuildReport).Methods("POST")
	r.HandleFunc("/api/wizard/report", deps.WizardHandler.DownloadReport).Methods("GET")
	r.HandleFunc("/api/wizard/reset", deps.WizardHandler.Reset).Methods("POST")
}
