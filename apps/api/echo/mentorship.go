package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core"
	"github.com/CovEducation/Website-sub000/core/mentorship"
	"github.com/CovEducation/Website-sub000/core/user"
)

type (
	mentorshipApi struct {
		svc    *mentorship.Service
		usrSvc *user.Service
	}

	// MentorshipRequest refers to an existing mentorship.
	MentorshipRequest struct {
		Mentorship core.Ref `json:"mentorship"`
	}

	// SessionRequest adds a session to an existing mentorship.
	SessionRequest struct {
		Session    mentorship.Session `json:"session"`
		Mentorship core.Ref           `json:"mentorship"`
	}
)

func registerMentorshipAPI(g *echo.Group, authed, registered echo.MiddlewareFunc, svc *mentorship.Service, usrSvc *user.Service) {
	api := mentorshipApi{svc: svc, usrSvc: usrSvc}

	mg := g.Group("/mentorships", authed, registered)
	mg.GET("", api.queryMine)
	mg.GET("/:id", api.retrieve)
	mg.POST("/request", api.request, parentOnly)
	mg.POST("/accept", api.accept, mentorOnly)
	mg.POST("/reject", api.reject, mentorOnly)
	mg.POST("/archive", api.archive)
	mg.POST("/session", api.addSession)

	g.GET("/students/:id/mentorships", api.queryStudent, authed, registered, parentOnly)
}

// loadAs fetches the referenced mentorship and checks that the caller takes part in it.
// mentorOnly restricts the check to the mentorship's mentor.
func (api *mentorshipApi) loadAs(ctx echo.Context, id core.Ref, mentorOnly bool) (mentorship.Mentorship, error) {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return mentorship.Mentorship{}, err
	}
	m, err := api.svc.GetMentorship(ctx.Request().Context(), id.String())
	if err != nil {
		return mentorship.Mentorship{}, errors.Wrap(err, "finding mentorship")
	}

	allowed := acc.IsMentor() && m.MentorID == acc.ID
	if !mentorOnly {
		allowed = allowed || (acc.IsParent() && m.ParentID == acc.ID)
	}
	if !allowed {
		return mentorship.Mentorship{}, errHttpForbidden
	}
	return m, nil
}

func (api *mentorshipApi) bindRef(ctx echo.Context) (core.Ref, error) {
	var data MentorshipRequest
	if err := ctx.Bind(&data); err != nil {
		return "", errors.Wrap(err, "binding to MentorshipRequest")
	}
	return data.Mentorship, nil
}

// Handlers

func (api *mentorshipApi) request(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data mentorship.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if data.Parent == "" {
		data.Parent = core.Ref(acc.ID)
	}
	if data.Parent.String() != acc.ID {
		return errNotRequestingParent
	}

	m, err := api.svc.SendRequest(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *mentorshipApi) accept(ctx echo.Context) error {
	ref, err := api.bindRef(ctx)
	if err != nil {
		return err
	}
	if _, err = api.loadAs(ctx, ref, true); err != nil {
		return err
	}
	m, err := api.svc.AcceptRequest(ctx.Request().Context(), ref.String())
	if err != nil {
		return errors.Wrap(err, "accepting request")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *mentorshipApi) reject(ctx echo.Context) error {
	ref, err := api.bindRef(ctx)
	if err != nil {
		return err
	}
	if _, err = api.loadAs(ctx, ref, true); err != nil {
		return err
	}
	m, err := api.svc.RejectRequest(ctx.Request().Context(), ref.String())
	if err != nil {
		return errors.Wrap(err, "rejecting request")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *mentorshipApi) archive(ctx echo.Context) error {
	ref, err := api.bindRef(ctx)
	if err != nil {
		return err
	}
	if _, err = api.loadAs(ctx, ref, false); err != nil {
		return err
	}
	m, err := api.svc.ArchiveMentorship(ctx.Request().Context(), ref.String())
	if err != nil {
		return errors.Wrap(err, "archiving mentorship")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *mentorshipApi) addSession(ctx echo.Context) error {
	var data SessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionRequest")
	}
	if _, err := api.loadAs(ctx, data.Mentorship, false); err != nil {
		return err
	}
	m, err := api.svc.AddSessionToMentorship(ctx.Request().Context(), data.Mentorship.String(), data.Session)
	if err != nil {
		return errors.Wrap(err, "adding session")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *mentorshipApi) retrieve(ctx echo.Context) error {
	m, err := api.loadAs(ctx, core.Ref(ctx.Param("id")), false)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *mentorshipApi) queryMine(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	ms, err := api.svc.GetCurrentMentorships(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "querying mentorships")
	}
	return ctx.JSON(http.StatusOK, ms)
}

func (api *mentorshipApi) queryStudent(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	student, err := api.usrSvc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	if student.ParentID != acc.ID {
		return errHttpForbidden
	}
	ms, err := api.svc.GetCurrentMentorships(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "querying mentorships")
	}
	return ctx.JSON(http.StatusOK, ms)
}
