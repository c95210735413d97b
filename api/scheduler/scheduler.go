// Package scheduler runs the periodic commitment reconciliation job. Mission
// accept and unaccept write the volunteer record before the emergency record,
// so any partial failure leaves the volunteer side ahead; the reconciler
// restores the emergency side to match.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/metrics"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// Scheduler handles the periodic background reconciliation of mission commitments
type Scheduler struct {
	cron   *cron.Cron
	VDB    databases.VolunteerDatabase
	EDB    databases.EmergencyDatabase
	Config config.Config
}

// NewScheduler creates a new scheduler instance
func NewScheduler(vdb databases.VolunteerDatabase, edb databases.EmergencyDatabase, cfg config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		VDB:    vdb,
		EDB:    edb,
		Config: cfg,
	}
}

// Start begins the scheduler with the reconciliation job registered
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(s.Config.ReconcileCron, s.reconcileCommitments)
	if err != nil {
		zap.S().Errorw("failed to register reconciliation job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Commitment reconciliation scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Commitment reconciliation scheduler stopped")
}

// reconcileCommitments scans both sides of every commitment and repairs the
// one-sided ones. The volunteer record is written first on accept, so a
// commitment missing from the emergency is completed there; an assignment
// with no matching commitment is a leftover from a failed unaccept and is
// removed.
func (s *Scheduler) reconcileCommitments() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	zap.S().Info("Running commitment reconciliation job")

	volunteers, err := s.VDB.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Errorw("failed to load volunteers for reconciliation", "error", err)
		return
	}

	emergencies, err := s.EDB.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Errorw("failed to load emergencies for reconciliation", "error", err)
		return
	}

	emergencyByID := make(map[string]models.Emergency, len(emergencies))
	for _, e := range emergencies {
		emergencyByID[e.ID] = e
	}
	volunteerByID := make(map[string]models.Volunteer, len(volunteers))
	for _, v := range volunteers {
		volunteerByID[v.ID] = v
	}

	repaired := s.completeVolunteerSideCommitments(ctx, volunteers, emergencyByID)
	repaired += s.removeOrphanedAssignments(ctx, emergencies, volunteerByID)

	if repaired > 0 {
		zap.S().Infow("Reconciliation repaired one-sided commitments", "count", repaired)
		s.sendDigest(repaired)
	}
}

// completeVolunteerSideCommitments re-writes the assignment record for every
// commitment the emergency side is missing
func (s *Scheduler) completeVolunteerSideCommitments(ctx context.Context, volunteers []models.Volunteer, emergencyByID map[string]models.Emergency) int {
	repaired := 0
	for _, v := range volunteers {
		for emergencyID, commitment := range v.AcceptedMissions {
			emergency, ok := emergencyByID[emergencyID]
			if !ok {
				zap.S().Warnw("commitment references a missing emergency",
					"volunteerId", v.ID,
					"emergencyId", emergencyID,
				)
				continue
			}
			if _, assigned := emergency.AssignedVolunteers[v.ID]; assigned {
				continue
			}

			_, err := s.EDB.UpdateOne(ctx,
				bson.M{"_id": emergencyID},
				bson.M{"$set": bson.M{"assignedVolunteers." + v.ID: models.Assignment{
					UserID:     v.ID,
					AcceptedAt: commitment.AcceptedAt,
				}}},
			)
			if err != nil {
				zap.S().Errorw("failed to repair one-sided commitment",
					"volunteerId", v.ID,
					"emergencyId", emergencyID,
					"error", err,
				)
				continue
			}
			metrics.CommitmentRepairsTotal.Inc()
			repaired++
		}
	}
	return repaired
}

// removeOrphanedAssignments clears assignment records whose volunteer no
// longer holds the commitment
func (s *Scheduler) removeOrphanedAssignments(ctx context.Context, emergencies []models.Emergency, volunteerByID map[string]models.Volunteer) int {
	repaired := 0
	for _, e := range emergencies {
		for volunteerID := range e.AssignedVolunteers {
			volunteer, ok := volunteerByID[volunteerID]
			if ok {
				if _, committed := volunteer.AcceptedMissions[e.ID]; committed {
					continue
				}
			}

			_, err := s.EDB.UpdateOne(ctx,
				bson.M{"_id": e.ID},
				bson.M{"$unset": bson.M{"assignedVolunteers." + volunteerID: ""}},
			)
			if err != nil {
				zap.S().Errorw("failed to remove orphaned assignment",
					"volunteerId", volunteerID,
					"emergencyId", e.ID,
					"error", err,
				)
				continue
			}
			metrics.CommitmentRepairsTotal.Inc()
			repaired++
		}
	}
	return repaired
}

// sendDigest emails the ops address a short summary of the repairs
func (s *Scheduler) sendDigest(repaired int) {
	if s.Config.OpsEmail == "" {
		zap.S().Debug("OPS_EMAIL not set, skipping reconciliation digest")
		return
	}

	from := mail.NewEmail("Disaster Response Volunteer System", "no-reply@disaster-response.org")
	subject := "Commitment reconciliation digest"
	to := mail.NewEmail("", s.Config.OpsEmail)
	plain := fmt.Sprintf("The reconciliation job repaired %d one-sided mission commitment(s) in the last run.", repaired)
	html := fmt.Sprintf("<p>The reconciliation job repaired <strong>%d</strong> one-sided mission commitment(s) in the last run.</p>", repaired)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	if _, err := client.Send(msg); err != nil {
		zap.S().Errorw("failed to send reconciliation digest", "error", err)
	}
}
