package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"smartrecruiter/internal/gateway"
	"smartrecruiter/internal/http/middleware"
	"smartrecruiter/internal/result"
	"smartrecruiter/internal/upload"
)

// UploadCV handles the CV submission form. The file arrives in the "cv"
// multipart field and the target role in "appliedJob". Rejections re-render
// the form with the role preserved; the file input cannot be refilled, so a
// rejected file must be picked again.
func (h *Handler) UploadCV(c *fiber.Ctx) error {
	appliedJob := c.FormValue("appliedJob")
	visitorID := middleware.VisitorFromCtx(c)
	sess := middleware.SessionFromCtx(c)

	var meta upload.FileMeta
	fh, err := c.FormFile("cv")
	if err == nil {
		meta = upload.FileMeta{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
	}

	var cv io.Reader
	if fh != nil {
		f, openErr := fh.Open()
		if openErr != nil {
			return h.renderUploadFailure(c, appliedJob, map[string]string{
				"cv": "Could not read the selected file. Please try again.",
			}, "")
		}
		defer f.Close()
		cv = f
	}

	res, err := h.workflow.Submit(c.UserContext(), visitorID, sess, cv, meta, appliedJob)
	if err != nil {
		return h.submitFailure(c, appliedJob, err)
	}

	h.log.Log("cv_analyzed", map[string]any{
		"visitor_id":  visitorID,
		"match_score": res.MatchScore,
	})
	setFlash(c, "Analysis complete.")
	return c.Redirect("/result", fiber.StatusSeeOther)
}

func (h *Handler) submitFailure(c *fiber.Ctx, appliedJob string, err error) error {
	switch {
	case errors.Is(err, result.ErrLoginRequired):
		setFlash(c, "Your session has expired. Please log in again.")
		return c.Redirect("/login", fiber.StatusSeeOther)
	case errors.Is(err, upload.ErrNoFile),
		errors.Is(err, upload.ErrNotPDF),
		errors.Is(err, upload.ErrTooLarge):
		return h.renderUploadFailure(c, appliedJob, map[string]string{"cv": err.Error()}, "")
	case errors.Is(err, upload.ErrSubmissionInFlight):
		return h.renderUploadFailure(c, appliedJob, nil, err.Error())
	}

	if fields := fieldErrors(err); fields != nil {
		return h.renderUploadFailure(c, appliedJob, fields, "")
	}

	var serr *gateway.ServerError
	if errors.As(err, &serr) {
		return h.renderUploadFailure(c, appliedJob, nil, serr.Message)
	}

	h.log.Log("cv_submit_failed", map[string]any{
		"visitor_id": middleware.VisitorFromCtx(c),
		"error":      err.Error(),
	})
	return h.renderUploadFailure(c, appliedJob, nil, "Analysis is unavailable right now. Please try again shortly.")
}

func (h *Handler) renderUploadFailure(c *fiber.Ctx, appliedJob string, fields map[string]string, flash string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	data := fiber.Map{
		"AppliedJob": appliedJob,
		"Errors":     fields,
	}
	if flash != "" {
		data["Flash"] = flash
	}
	return h.render(c, "upload", "Upload Your CV", data)
}

// Result renders the analysis screen. An optional ?id= selects a specific
// record, otherwise the most recent one is shown. When the backend is
// unreachable the last cached analysis fills in; with nothing cached the
// empty state renders instead of an error.
func (h *Handler) Result(c *fiber.Ctx) error {
	visitorID := middleware.VisitorFromCtx(c)
	sess := middleware.SessionFromCtx(c)

	res, source, err := h.viewer.Load(c.UserContext(), visitorID, sess, c.Query("id"))
	if err != nil {
		if errors.Is(err, result.ErrLoginRequired) {
			setFlash(c, "Your session has expired. Please log in again.")
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return err
	}

	var cvLink string
	if res != nil {
		cvLink = h.workflow.ArchivedCVLink(c.UserContext(), visitorID)
	}

	return h.render(c, "result", "Your CV Analysis", fiber.Map{
		"Result":    res,
		"FromCache": source == result.SourceCache,
		"Empty":     res == nil,
		"CVLink":    cvLink,
	})
}
