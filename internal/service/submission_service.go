package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/email"
	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/metrics"
	"github.com/sellwithus/storefront/internal/model"
	"github.com/sellwithus/storefront/internal/storage"
)

// ErrTooManyImages is returned before any upload is touched when a
// submission carries more images than allowed.
var ErrTooManyImages = errors.New("too many images")

// MailDeliveryError reports a failed send. Err carries the provider's cause.
type MailDeliveryError struct {
	Err error
}

func (e *MailDeliveryError) Error() string {
	return "error sending email: " + e.Err.Error()
}

func (e *MailDeliveryError) Unwrap() error {
	return e.Err
}

// SubmissionService turns a "sell with us" form post into one notification email
type SubmissionService struct {
	stager      *storage.Stager
	sender      email.Sender
	from        string
	to          string
	sendTimeout time.Duration
	maxImages   int
	allowed     map[string]struct{}
	log         *logger.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	stager *storage.Stager,
	sender email.Sender,
	emailCfg config.EmailConfig,
	uploadCfg config.UploadConfig,
	log *logger.Logger,
) *SubmissionService {
	allowed := make(map[string]struct{}, len(uploadCfg.AllowedExtensions))
	for _, ext := range uploadCfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	return &SubmissionService{
		stager:      stager,
		sender:      sender,
		from:        emailCfg.From,
		to:          emailCfg.To,
		sendTimeout: emailCfg.SendTimeout,
		maxImages:   uploadCfg.MaxImages,
		allowed:     allowed,
		log:         log.WithComponent("submissions"),
	}
}

// MaxImages returns the per-submission image limit
func (s *SubmissionService) MaxImages() int {
	return s.maxImages
}

// Submit validates, stages and mails one submission. Staged files are removed
// before Submit returns, whether or not the send succeeded.
func (s *SubmissionService) Submit(ctx context.Context, req model.SubmissionRequest) (*model.SubmissionResult, error) {
	if len(req.Images) > s.maxImages {
		metrics.Submissions.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyImages, len(req.Images), s.maxImages)
	}

	accepted, skipped := FilterImages(req.Images, s.allowed)

	batch := s.stager.Begin()
	log := s.log.With().Str("batch", batch.ID()).Logger()
	defer func() {
		if err := batch.Cleanup(); err != nil {
			log.Error().Err(err).Msg("staging cleanup incomplete")
		}
	}()

	if skipped > 0 {
		log.Debug().Int("count", skipped).Msg("dropped uploads with disallowed names")
	}

	for _, upload := range accepted {
		if _, err := s.stage(batch, upload); err != nil {
			log.Warn().Err(err).Str("filename", upload.Filename).Msg("skipping upload")
			skipped++
		}
	}

	attachments := make([]email.Attachment, 0, len(batch.Files()))
	for _, f := range batch.Files() {
		content, err := os.ReadFile(f.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", f.Path).Msg("failed to read staged file")
			skipped++
			continue
		}
		attachments = append(attachments, email.Attachment{
			Filename:    filepath.Base(f.Path),
			ContentType: ImageContentType(f.OriginalName),
			Content:     content,
		})
	}

	metrics.StagedFiles.Add(float64(len(attachments)))
	metrics.SkippedFiles.Add(float64(skipped))

	msg := email.Message{
		From:        s.from,
		To:          s.to,
		ReplyTo:     replyTo(req.Email),
		Subject:     email.SubmissionSubject,
		TextBody:    email.SubmissionText(req.Name, req.Email, req.Phone),
		Attachments: attachments,
	}

	// The send outlives a client disconnect but not the timeout
	sendCtx := context.WithoutCancel(ctx)
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, s.sendTimeout)
		defer cancel()
	}

	if err := s.sender.Send(sendCtx, msg); err != nil {
		metrics.Submissions.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("provider", s.sender.Name()).Msg("failed to send submission email")
		return nil, &MailDeliveryError{Err: err}
	}

	metrics.Submissions.WithLabelValues("sent").Inc()
	log.Info().
		Int("attached", len(attachments)).
		Int("skipped", skipped).
		Str("provider", s.sender.Name()).
		Msg("submission sent")

	return &model.SubmissionResult{
		RequestID: batch.ID(),
		Attached:  len(attachments),
		Skipped:   skipped,
	}, nil
}

func (s *SubmissionService) stage(batch *storage.Batch, upload model.Upload) (model.StagedFile, error) {
	rc, err := upload.Open()
	if err != nil {
		return model.StagedFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer rc.Close()

	return batch.Stage(upload.Filename, rc)
}

// FilterImages keeps uploads whose filename has an allowed extension and
// reports how many were dropped. Order is preserved.
func FilterImages(uploads []model.Upload, allowed map[string]struct{}) ([]model.Upload, int) {
	accepted := make([]model.Upload, 0, len(uploads))
	for _, u := range uploads {
		if AllowedFile(u.Filename, allowed) {
			accepted = append(accepted, u)
		}
	}
	return accepted, len(uploads) - len(accepted)
}

// AllowedFile reports whether filename has an extension in the allowed set.
// The comparison is case-insensitive; names without a dot never match.
func AllowedFile(filename string, allowed map[string]struct{}) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := allowed[strings.ToLower(filename[i+1:])]
	return ok
}

// ImageContentType returns the media type declared for an attachment
func ImageContentType(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	}
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// replyTo returns the submitter's address when it parses, so the owner can
// answer directly. Anything else stays out of the headers.
func replyTo(addr string) string {
	parsed, err := mail.ParseAddress(strings.TrimSpace(addr))
	if err != nil {
		return ""
	}
	return parsed.Address
}
