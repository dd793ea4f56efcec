package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainBluesky "avatar_update_bot/internal/domain/bluesky"
	"avatar_update_bot/internal/domain/profile"
	"avatar_update_bot/internal/domain/schedule"
	"avatar_update_bot/internal/infra/blob"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UpdateService defines the single entry point an external scheduler invokes.
type UpdateService interface {
	// RunCycle executes one complete update cycle for the given instant.
	// A nil return covers both a successful write and a legitimate no-op
	// (no schedule entry for this hour).
	RunCycle(ctx context.Context, now time.Time) *Failure
}

// EndpointProber gates the pipeline on remote liveness.
type EndpointProber interface {
	IsAlive(ctx context.Context, address string) bool
}

// BlobFetcher retrieves raw blob bytes by owner DID and content identifier.
type BlobFetcher interface {
	Fetch(ctx context.Context, address, did, cid string) ([]byte, error)
}

// UpdateServiceImpl implements the UpdateService pipeline:
// resolve schedule -> probe endpoint -> login -> read current record ->
// fetch blobs -> merge -> conditional write.
type UpdateServiceImpl struct {
	address      string // normalized endpoint address
	handle       string
	password     string
	accountDID   string // optional override; session DID used when empty
	updateBanner bool

	source  schedule.Source
	prober  EndpointProber
	fetcher BlobFetcher
	client  domainBluesky.Client
	log     *logrus.Logger
}

func NewUpdateService(
	address string,
	handle string,
	password string,
	accountDID string,
	updateBanner bool,
	source schedule.Source,
	prober EndpointProber,
	fetcher BlobFetcher,
	client domainBluesky.Client,
	log *logrus.Logger,
) *UpdateServiceImpl {
	return &UpdateServiceImpl{
		address:      address,
		handle:       handle,
		password:     password,
		accountDID:   accountDID,
		updateBanner: updateBanner,
		source:       source,
		prober:       prober,
		fetcher:      fetcher,
		client:       client,
		log:          log,
	}
}

// RunCycle walks the update pipeline, aborting on the first fatal stage
// failure. Non-fatal conditions (record not yet created, banner fetch
// trouble) are logged and absorbed.
func (s *UpdateServiceImpl) RunCycle(ctx context.Context, now time.Time) *Failure {
	log := s.log.WithField("run_id", uuid.NewString())
	log.Infof("Starting update cycle for hour %02d", now.Hour())

	// Stage: schedule resolution. A miss here ends the cycle before any
	// network call is made.
	sched, err := s.source.Load(ctx)
	if err != nil {
		log.Errorf("Failed to load schedule: %v", err)
		return failure(FailureConfig, err)
	}

	sel, ok := schedule.Resolve(sched, now)
	if !ok {
		log.Infof("No schedule entry for hour %02d, nothing to do", now.Hour())
		return nil
	}
	if sel.AvatarCID == "" {
		log.Warnf("Schedule entry for hour %02d has no avatar CID, skipping update", now.Hour())
		return nil
	}
	log.Infof("Selected avatar CID: %s", sel.AvatarCID)

	// Stage: endpoint liveness. Hard gate before any credential-bearing call.
	if !s.prober.IsAlive(ctx, s.address) {
		err := fmt.Errorf("endpoint %s failed health check", s.address)
		log.Error(err.Error())
		return failure(FailureLiveness, err)
	}
	log.Debugf("Endpoint %s is alive", s.address)

	// Stage: authentication.
	session, err := s.client.Login(ctx, s.handle, s.password)
	if err != nil {
		log.Errorf("Authentication failed: %v", err)
		if errors.Is(err, domainBluesky.ErrAuthFailed) {
			return failure(FailureAuth, err)
		}
		return failure(FailureTransport, err)
	}
	log.Infof("Authentication successful for %s (DID: %s)", session.Handle, session.DID)

	repoDID := s.accountDID
	if repoDID == "" {
		repoDID = session.DID
	}

	// Stage: read current record. Absence is the first-ever-run case and is
	// not fatal; the merge starts from an empty baseline with no write
	// precondition.
	current, swapCID, err := s.client.ReadProfile(ctx, repoDID)
	if err != nil {
		if errors.Is(err, domainBluesky.ErrRecordNotFound) {
			log.Info("No existing profile record, starting from an empty baseline")
			current, swapCID = nil, ""
		} else {
			log.Errorf("Failed to read current profile record: %v", err)
			return failure(FailureTransport, err)
		}
	} else {
		log.Debugf("Read current profile record, version CID: %s", swapCID)
	}

	// Stage: fetch and classify the mandatory avatar blob.
	avatarMeta, err := s.retrieveBlob(ctx, repoDID, sel.AvatarCID)
	if err != nil {
		log.Errorf("Avatar blob retrieval failed: %v", err)
		return failure(FailureFetch, err)
	}
	log.Infof("Avatar blob %s classified as %s (%d bytes)", avatarMeta.CID, avatarMeta.MimeType, avatarMeta.SizeBytes)

	// Stage: optional banner. Failures here fall back to preserving the
	// prior banner rather than aborting or clearing it.
	bannerOp, bannerMeta := s.resolveBanner(ctx, log, repoDID, sel)

	next := profile.BuildNext(current, avatarMeta, bannerMeta, bannerOp)

	// Stage: conditional write. A conflict means a concurrent edit won the
	// race; retrying blindly could clobber it, so the cycle ends here.
	if err := s.client.WriteProfile(ctx, repoDID, next, swapCID); err != nil {
		if errors.Is(err, domainBluesky.ErrWriteConflict) {
			log.Errorf("Profile record changed between read and write, refusing to overwrite: %v", err)
			return failure(FailureConflict, err)
		}
		log.Errorf("Failed to write profile record: %v", err)
		return failure(FailureTransport, err)
	}

	log.Info("Profile updated successfully")
	return nil
}

// retrieveBlob fetches and classifies one blob.
func (s *UpdateServiceImpl) retrieveBlob(ctx context.Context, did, cid string) (profile.BlobMetadata, error) {
	data, err := s.fetcher.Fetch(ctx, s.address, did, cid)
	if err != nil {
		return profile.BlobMetadata{}, err
	}
	return blob.Classify(cid, data)
}

// resolveBanner turns the schedule's banner intent into a merge operation.
// Banner changes only happen at all when the banner flag is enabled.
func (s *UpdateServiceImpl) resolveBanner(ctx context.Context, log *logrus.Entry, repoDID string, sel schedule.AssetSelection) (profile.BannerOp, *profile.BlobMetadata) {
	if !s.updateBanner {
		return profile.BannerKeep, nil
	}

	switch sel.Banner {
	case schedule.BannerClear:
		log.Info("Schedule requests clearing the banner")
		return profile.BannerClear, nil
	case schedule.BannerSet:
		meta, err := s.retrieveBlob(ctx, repoDID, sel.BannerCID)
		if err != nil {
			log.Warnf("Banner blob retrieval failed, keeping previous banner: %v", err)
			return profile.BannerKeep, nil
		}
		log.Infof("Banner blob %s classified as %s (%d bytes)", meta.CID, meta.MimeType, meta.SizeBytes)
		return profile.BannerSet, &meta
	default:
		return profile.BannerKeep, nil
	}
}
