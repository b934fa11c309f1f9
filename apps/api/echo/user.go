package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CovEducation/Website-sub000/core/user"
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, authed, registered echo.MiddlewareFunc, svc *user.Service) {
	api := userApi{svc: svc}

	// identity verified, account not registered yet
	g.POST("/mentors", api.registerMentor, authed)
	g.POST("/parents", api.registerParent, authed)

	// registered accounts
	ag := g.Group("", authed, registered)
	ag.GET("/me", api.me)
	ag.GET("/mentors", api.queryMentors)
	ag.GET("/mentors/:id", api.retrieveMentor)
	ag.POST("/students", api.addStudent, parentOnly)
	ag.GET("/students", api.queryStudents, parentOnly)
}

// Handlers

func (api *userApi) registerMentor(ctx echo.Context) error {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	var data user.NewMentor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMentor")
	}
	if data.Email == "" {
		data.Email = id.Email
	}
	if data.Name == "" {
		data.Name = id.Name
	}

	mentor, err := api.svc.RegisterMentor(ctx.Request().Context(), id.UID, data)
	if err != nil {
		return errors.Wrap(err, "registering mentor")
	}
	return ctx.JSON(http.StatusCreated, mentor)
}

func (api *userApi) registerParent(ctx echo.Context) error {
	id, err := getContextIdentity(ctx)
	if err != nil {
		return err
	}
	var data user.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if data.Email == "" {
		data.Email = id.Email
	}
	if data.Name == "" {
		data.Name = id.Name
	}

	parent, err := api.svc.RegisterParent(ctx.Request().Context(), id.UID, data)
	if err != nil {
		return errors.Wrap(err, "registering parent")
	}
	return ctx.JSON(http.StatusCreated, parent)
}

func (api *userApi) me(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *userApi) queryMentors(ctx echo.Context) error {
	var filter user.MentorFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to MentorFilter")
	}
	mentors, err := api.svc.QueryMentors(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying mentors")
	}
	return ctx.JSON(http.StatusOK, mentors)
}

func (api *userApi) retrieveMentor(ctx echo.Context) error {
	mentor, err := api.svc.GetMentor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding mentor")
	}
	return ctx.JSON(http.StatusOK, mentor)
}

func (api *userApi) addStudent(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data user.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	student, err := api.svc.AddStudent(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, student)
}

func (api *userApi) queryStudents(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.QueryStudents(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}
