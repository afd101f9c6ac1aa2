package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/internal/anomaly"
	"fairwork/labor-trust/labor-trust-backend/internal/claims"
)

// SNSAPI is the slice of the SNS client the service uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Broadcaster fans a message out to connected feed clients.
type Broadcaster interface {
	Broadcast(msg WebSocketMessage)
}

// Service notifies peers about submitted claims and pushes anomaly flags
// to the reviewer feed. Everything here is best effort: a delivery
// failure is logged, never propagated to the caller.
type Service struct {
	sns      SNSAPI
	topicARN string
	feed     Broadcaster
	logger   *zap.Logger
}

func NewService(snsClient SNSAPI, topicARN string, feed Broadcaster, logger *zap.Logger) *Service {
	return &Service{
		sns:      snsClient,
		topicARN: topicARN,
		feed:     feed,
		logger:   logger,
	}
}

// ClaimSubmittedEvent is the payload published when a claim needs peers.
type ClaimSubmittedEvent struct {
	ClaimID       string    `json:"claim_id"`
	ParticipantID string    `json:"participant_id"`
	ClaimDate     string    `json:"claim_date"`
	HoursWorked   float64   `json:"hours_worked"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NotifyClaimSubmitted tells candidate verifiers a claim is waiting.
// Implements the claim ledger's PeerNotifier.
func (s *Service) NotifyClaimSubmitted(ctx context.Context, claim *claims.WorkClaim) {
	event := ClaimSubmittedEvent{
		ClaimID:       claim.ID.String(),
		ParticipantID: claim.ParticipantID.String(),
		ClaimDate:     claim.ClaimDate.Format("2006-01-02"),
		HoursWorked:   claim.HoursWorked,
		SubmittedAt:   claim.CreatedAt,
	}

	if s.feed != nil {
		s.feed.Broadcast(WebSocketMessage{
			Type:      WSMessageTypeClaim,
			Data:      event,
			Timestamp: time.Now(),
		})
	}

	if s.sns == nil || s.topicARN == "" {
		return
	}
	// Detached from the request: the submission must not wait on SNS.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("failed to marshal claim event", zap.Error(err))
			return
		}
		if _, err := s.sns.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(s.topicARN),
			Message:  aws.String(string(payload)),
			Subject:  aws.String("work claim awaiting attestation"),
		}); err != nil {
			s.logger.Warn("failed to publish claim notification",
				zap.String("claim_id", event.ClaimID), zap.Error(err))
		}
	}()
}

// BroadcastFlag pushes an anomaly flag to the reviewer feed. Implements
// the flag service's FlagBroadcaster.
func (s *Service) BroadcastFlag(flag anomaly.AnomalyFlag) {
	if s.feed == nil {
		return
	}
	s.feed.Broadcast(WebSocketMessage{
		Type:      WSMessageTypeFlag,
		Data:      flag,
		Timestamp: time.Now(),
	})
}
