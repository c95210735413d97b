package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/api"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/matcher"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/metrics"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/missions"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Feed     *EmergencyFeed
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewVolunteerDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	if a.Feed == nil {
		a.Feed = NewEmergencyFeed()
	}

	engine, err := matcher.New(matcher.Weights{
		Skill:    a.Config.SkillWeight,
		Urgency:  a.Config.UrgencyWeight,
		Distance: a.Config.DistanceWeight,
	}, nil)
	if err != nil {
		zap.S().With(err).Warn("invalid match weights configured, falling back to defaults")
		engine, _ = matcher.New(matcher.DefaultWeights(), nil)
	}

	vdb := databases.NewVolunteerDatabase(a.dbHelper)
	edb := databases.NewEmergencyDatabase(a.dbHelper)

	v := Volunteer{DB: vdb}
	e := Emergency{DB: edb, Feed: a.Feed}
	match := Match{VDB: vdb, EDB: edb, Engine: engine}
	mission := Mission{
		Lifecycle: missions.NewLifecycle(vdb, edb),
		VDB:       vdb,
		EDB:       edb,
		Feed:      a.Feed,
	}
	u := Update{DB: databases.NewUpdateDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.HandleFunc("/ws/emergencies", a.Feed.ServeWS)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/volunteer/register", http.HandlerFunc(v.RegisterVolunteerHandler)).Methods("POST")
	apiCreate.Handle("/volunteer/login", http.HandlerFunc(v.LoginHandler)).Methods("POST")
	apiCreate.Handle("/volunteer/{volunteer_id}", api.Middleware(http.HandlerFunc(v.VolunteerByIDHandler))).Methods("GET")
	apiCreate.Handle("/volunteer/{volunteer_id}", api.Middleware(http.HandlerFunc(v.UpdateVolunteerHandler))).Methods("PUT")
	apiCreate.Handle("/volunteer/{volunteer_id}/availability", api.Middleware(http.HandlerFunc(v.SetAvailabilityHandler))).Methods("PUT")
	apiCreate.Handle("/volunteer/{volunteer_id}/matches", api.Middleware(http.HandlerFunc(match.VolunteerMatchesHandler))).Methods("GET")
	apiCreate.Handle("/volunteer/{volunteer_id}/missions", api.Middleware(http.HandlerFunc(mission.VolunteerMissionsHandler))).Methods("GET")
	apiCreate.Handle("/volunteer/{volunteer_id}/missions/{emergency_id}", api.Middleware(http.HandlerFunc(mission.AcceptMissionHandler))).Methods("POST")
	apiCreate.Handle("/volunteer/{volunteer_id}/missions/{emergency_id}", api.Middleware(http.HandlerFunc(mission.UnacceptMissionHandler))).Methods("DELETE")

	apiCreate.Handle("/emergency", api.Middleware(http.HandlerFunc(e.CreateEmergencyHandler))).Methods("POST")
	apiCreate.Handle("/emergency/{emergency_id}", api.Middleware(http.HandlerFunc(e.EmergencyByIDHandler))).Methods("GET")
	apiCreate.Handle("/emergency/{emergency_id}", api.Middleware(http.HandlerFunc(e.UpdateEmergencyHandler))).Methods("PUT")
	apiCreate.Handle("/emergency/{emergency_id}", api.Middleware(http.HandlerFunc(e.DeleteEmergencyHandler))).Methods("DELETE")
	apiCreate.Handle("/emergencies", api.Middleware(http.HandlerFunc(e.EmergencyHandler))).Methods("GET")

	apiCreate.Handle("/updates", api.Middleware(http.HandlerFunc(u.UpdateFeedHandler))).Methods("GET")
	apiCreate.Handle("/updates", api.Middleware(http.HandlerFunc(u.CreateUpdateHandler))).Methods("POST")
	apiCreate.Handle("/updates/{update_id}", api.Middleware(http.HandlerFunc(u.DeleteUpdateHandler))).Methods("DELETE")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

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
	zap.S().Info("disaster-response-volunteer-system has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil

}

// DatabaseHelper exposes the connected db helper for collaborators wired in main
func (a *App) DatabaseHelper() databases.DatabaseHelper {
	return a.dbHelper
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
