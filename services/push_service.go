package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
)

// snsAPI is the subset of the SNS client used for mobile push.
type snsAPI interface {
	CreatePlatformEndpoint(ctx context.Context, in *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type PushService struct {
	log         *logger.Logger
	sns         snsAPI
	devices     repositories.DeviceStore
	platformARN string
}

func NewPushService(log *logger.Logger, sns snsAPI, devices repositories.DeviceStore, platformARN string) *PushService {
	return &PushService{log: log, sns: sns, devices: devices, platformARN: platformARN}
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required"` // android | ios
	Token    string `json:"token" binding:"required"`
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

func (p *PushService) RegisterDevice(ctx context.Context, userID uuid.UUID, req RegisterDeviceReq) (*models.UserDevice, error) {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform != "android" && platform != "ios" {
		return nil, &ValidationError{Field: "platform", Value: req.Platform, Reason: "expected android or ios"}
	}
	if p.platformARN == "" {
		return nil, errors.New("SNS_PLATFORM_ARN not set")
	}

	out, err := p.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.platformARN),
		Token:                  aws.String(req.Token),
	})
	if err != nil {
		return nil, err
	}

	dev := &models.UserDevice{
		UserID:      userID,
		Platform:    platform,
		TokenHash:   tokenHash(req.Token),
		EndpointARN: aws.ToString(out.EndpointArn),
	}
	if err := p.devices.Save(ctx, dev); err != nil {
		return nil, err
	}
	return dev, nil
}

// PushToUser fans a notification out to the user's enabled devices.
// Failures are logged; push is best effort.
func (p *PushService) PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	endpoints, err := p.devices.EnabledForUser(ctx, userID)
	if err != nil {
		p.log.Warn("load push endpoints failed", "user_id", userID, "error", err)
		return
	}
	if len(endpoints) == 0 {
		return
	}

	gcm, _ := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	raw, _ := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	for _, d := range endpoints {
		_, err := p.sns.Publish(ctx, &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		var disabled *snstypes.EndpointDisabledException
		switch {
		case errors.As(err, &disabled):
			if err := p.devices.Disable(ctx, d.ID); err != nil {
				p.log.Warn("disable push device failed", "device_id", d.ID, "error", err)
			}
		case err != nil:
			p.log.Warn("push publish failed", "user_id", userID, "device_id", d.ID, "error", err)
		}
	}
}

// SetNotifications turns push on or off for all of the user's devices.
func (p *PushService) SetNotifications(ctx context.Context, userID uuid.UUID, enabled bool) (int64, error) {
	return p.devices.SetEnabled(ctx, userID, enabled)
}
