package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartrecruiter/internal/config"
	"smartrecruiter/internal/gateway"
	"smartrecruiter/internal/logging"
	"smartrecruiter/internal/model"
	"smartrecruiter/internal/repository"
	"smartrecruiter/internal/result"
	"smartrecruiter/internal/storage"
)

var (
	// ErrNotPDF rejects a selected file whose type is not the accepted document format.
	ErrNotPDF = errors.New("Only PDF files are allowed.")
	// ErrTooLarge rejects a selected file above the size ceiling.
	ErrTooLarge = errors.New("Maximum file size is 5MB.")
	// ErrNoFile means submission was attempted without a selected file.
	ErrNoFile = errors.New("Please select your CV file first.")
	// ErrSubmissionInFlight guards against duplicate submits while one is running.
	ErrSubmissionInFlight = errors.New("An analysis is already in progress. Please wait.")
)

// archiveKeyCache is the visitor-store key holding the object key of the
// most recently archived CV.
const archiveKeyCache = "cvArchiveKey"

// FileMeta describes a selected file before its content is read.
type FileMeta struct {
	Name        string
	ContentType string
	Size        int64
}

// Workflow turns a selected CV and target role into a submitted analysis
// request: idle → validating → (rejected → idle) | (submitting → succeeded |
// failed). At most one submission is in flight per visitor.
type Workflow struct {
	cfg     config.UploadConfig
	backend gateway.AnalysisGateway
	repo    repository.VisitorRepository
	archive storage.Archive
	log     logging.Logger

	mu       sync.Mutex
	inFlight map[string]bool
	status   map[string]model.SubmissionStatus
}

// NewWorkflow constructs an upload workflow. archive may be nil to disable
// CV archiving; a nil logger disables diagnostics.
func NewWorkflow(cfg config.UploadConfig, backend gateway.AnalysisGateway, repo repository.VisitorRepository, archive storage.Archive, log logging.Logger) *Workflow {
	if log == nil {
		log = logging.Nop{}
	}
	return &Workflow{
		cfg:      cfg,
		backend:  backend,
		repo:     repo,
		archive:  archive,
		log:      log,
		inFlight: make(map[string]bool),
		status:   make(map[string]model.SubmissionStatus),
	}
}

// Status reports the visitor's current submission state. Terminal states are
// cleared on read so the map only holds visitors with work in progress.
func (w *Workflow) Status(visitorID string) model.SubmissionStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.status[visitorID]
	if !ok {
		return model.StatusIdle
	}
	if s == model.StatusSucceeded || s == model.StatusFailed {
		delete(w.status, visitorID)
	}
	return s
}

// ValidateFile applies the selection rules in order, reporting only the first
// violated one. A rejection discards the rejected file; any previously
// accepted selection is the caller's to keep.
func (w *Workflow) ValidateFile(meta FileMeta) error {
	if meta.ContentType != w.cfg.ContentType && !strings.EqualFold(filepath.Ext(meta.Name), ".pdf") {
		return ErrNotPDF
	}
	if meta.Size > w.cfg.MaxSizeBytes {
		return ErrTooLarge
	}
	return nil
}

// Submit validates and submits a CV for analysis, returning the normalized
// result. All guards run before any network traffic: a file must be
// selected, the target role must be non-blank, and a session must be present
// (result.ErrLoginRequired redirects instead of submitting). The request is
// never retried automatically; on failure the caller resubmits explicitly
// with its selection preserved.
func (w *Workflow) Submit(ctx context.Context, visitorID string, sess *model.Session, cv io.Reader, meta FileMeta, appliedJob string) (*model.AnalysisResult, error) {
	if meta.Name == "" || cv == nil {
		return nil, ErrNoFile
	}
	if strings.TrimSpace(appliedJob) == "" {
		return nil, &gateway.ValidationError{Fields: map[string]string{
			"appliedJob": "Please enter the position you are applying for.",
		}}
	}
	if !sess.Present() {
		return nil, result.ErrLoginRequired
	}

	w.setStatus(visitorID, model.StatusValidating)
	if err := w.ValidateFile(meta); err != nil {
		w.setStatus(visitorID, model.StatusIdle)
		return nil, err
	}

	if !w.acquire(visitorID) {
		return nil, ErrSubmissionInFlight
	}
	defer w.release(visitorID)

	// Buffer the content so it can be both submitted and archived. The extra
	// byte catches files that lied about their size in metadata.
	content, err := io.ReadAll(io.LimitReader(cv, w.cfg.MaxSizeBytes+1))
	if err != nil {
		w.setStatus(visitorID, model.StatusFailed)
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	if int64(len(content)) > w.cfg.MaxSizeBytes {
		w.setStatus(visitorID, model.StatusIdle)
		return nil, ErrTooLarge
	}

	w.setStatus(visitorID, model.StatusSubmitting)
	raw, err := w.backend.UploadCV(ctx, sess.Token, bytes.NewReader(content), meta.Name, strings.TrimSpace(appliedJob), sess.UserID)
	if err != nil {
		w.setStatus(visitorID, model.StatusFailed)
		if errors.Is(err, gateway.ErrUnauthorized) {
			return nil, result.ErrLoginRequired
		}
		return nil, err
	}

	// Persist the payload as the current analysis; the result page's cache
	// fallback depends on it. A write failure is diagnostic only.
	if err := w.repo.Set(ctx, visitorID, result.CacheKey, string(raw)); err != nil {
		w.log.Log("analysis_cache_write_failed", map[string]any{
			"visitor_id": visitorID,
			"error":      err.Error(),
		})
	}

	w.archiveCV(ctx, visitorID, content, meta, appliedJob)

	w.setStatus(visitorID, model.StatusSucceeded)
	return result.Normalize(raw), nil
}

// archiveCV keeps a copy of the analyzed CV in object storage. Best-effort:
// the analysis already succeeded, so archive failures only get logged.
func (w *Workflow) archiveCV(ctx context.Context, visitorID string, content []byte, meta FileMeta, appliedJob string) {
	if w.archive == nil {
		return
	}

	key := "cvs/" + uuid.NewString() + ".pdf"
	_, err := w.archive.Put(ctx, key, bytes.NewReader(content), storage.PutOptions{
		Size:        int64(len(content)),
		ContentType: w.cfg.ContentType,
		Metadata: map[string]string{
			"original-filename": meta.Name,
			"applied-job":       strings.TrimSpace(appliedJob),
			"visitor-id":        visitorID,
		},
	})
	if err != nil {
		w.log.Log("cv_archive_failed", map[string]any{
			"visitor_id": visitorID,
			"key":        key,
			"error":      err.Error(),
		})
		return
	}

	if err := w.repo.Set(ctx, visitorID, archiveKeyCache, key); err != nil {
		w.log.Log("cv_archive_key_write_failed", map[string]any{
			"visitor_id": visitorID,
			"error":      err.Error(),
		})
	}
}

// DiscardArchive removes the visitor's archived CV, so no file outlives the
// session that uploaded it. The key row itself is wiped with the rest of the
// visitor's state on logout. Best-effort: a failed delete is only logged.
func (w *Workflow) DiscardArchive(ctx context.Context, visitorID string) {
	if w.archive == nil {
		return
	}

	key, err := w.repo.Get(ctx, visitorID, archiveKeyCache)
	if err != nil || key == "" {
		return
	}

	if err := w.archive.Delete(ctx, key); err != nil {
		w.log.Log("cv_archive_delete_failed", map[string]any{
			"visitor_id": visitorID,
			"key":        key,
			"error":      err.Error(),
		})
	}
}

// ArchivedCVLink returns a short-lived download URL for the visitor's last
// archived CV, or "" when nothing is archived or the archive is unavailable.
func (w *Workflow) ArchivedCVLink(ctx context.Context, visitorID string) string {
	if w.archive == nil {
		return ""
	}

	key, err := w.repo.Get(ctx, visitorID, archiveKeyCache)
	if err != nil || key == "" {
		return ""
	}

	link, err := w.archive.PresignGet(ctx, key, 15*time.Minute)
	if err != nil {
		w.log.Log("cv_archive_presign_failed", map[string]any{
			"visitor_id": visitorID,
			"key":        key,
			"error":      err.Error(),
		})
		return ""
	}
	return link
}

func (w *Workflow) acquire(visitorID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[visitorID] {
		return false
	}
	w.inFlight[visitorID] = true
	return true
}

func (w *Workflow) release(visitorID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, visitorID)
}

func (w *Workflow) setStatus(visitorID string, s model.SubmissionStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// Idle is the zero state; dropping the entry keeps the map bounded by
	// the number of visitors mid-submission.
	if s == model.StatusIdle {
		delete(w.status, visitorID)
		return
	}
	w.status[visitorID] = s
}
