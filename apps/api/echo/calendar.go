package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/calendar"
)

var (
	NowFunc = time.Now // mockable

	// MaxRangeDays bounds the days listed by a single /calendar/range call.
	MaxRangeDays = 3660
)

type (
	ConversionResponse struct {
		AD          string `json:"ad"`
		BS          string `json:"bs"`
		BSFormatted string `json:"bs_formatted"`
	}

	RangeResponse struct {
		Start string   `json:"start"`
		End   string   `json:"end"`
		Days  int      `json:"days"`
		Dates []string `json:"dates"`
	}

	TodayResponse struct {
		Today    string `json:"today"`
		Tomorrow string `json:"tomorrow"`
		TodayBS  string `json:"today_bs,omitempty"`
		Timezone string `json:"timezone"`
	}

	MonthResponse struct {
		Month int    `json:"month"`
		Name  string `json:"name"`
	}
)

type calendarApi struct {
	loc *time.Location
}

func registerCalendarAPI(g *echo.Group, loc *time.Location) {
	api := calendarApi{loc: loc}

	cg := g.Group("/calendar")
	cg.GET("", api.info)
	cg.GET("/normalize", api.normalize)
	cg.GET("/ad-to-bs", api.adToBs)
	cg.GET("/bs-to-ad", api.bsToAd)
	cg.GET("/range", api.dateRange)
	cg.GET("/today", api.today)
	cg.GET("/months/:month", api.month)
}

func requiredParam(ctx echo.Context, name string) (string, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return "", core.NewValidationError(nil, core.FieldError{Field: name, Error: "this field is required"})
	}
	return val, nil
}

func conversion(ad, bs calendar.Date) ConversionResponse {
	return ConversionResponse{AD: ad.String(), BS: bs.String(), BSFormatted: calendar.FormatBS(bs)}
}

// Handlers

func (api *calendarApi) info(ctx echo.Context) error {
	firstBS, lastBS, firstAD, lastAD := calendar.SupportedRange()
	return ctx.JSON(http.StatusOK, echo.Map{
		"table_version": calendar.TableVersion(),
		"first_bs":      firstBS,
		"last_bs":       lastBS,
		"first_ad":      firstAD,
		"last_ad":       lastAD,
	})
}

func (api *calendarApi) normalize(ctx echo.Context) error {
	date, err := requiredParam(ctx, "date")
	if err != nil {
		return err
	}
	norm, err := calendar.Normalize(date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"date": norm})
}

func (api *calendarApi) adToBs(ctx echo.Context) error {
	date, err := requiredParam(ctx, "date")
	if err != nil {
		return err
	}
	ad, err := calendar.Parse(date, calendar.AD)
	if err != nil {
		return err
	}
	bs, err := calendar.ADToBS(ad)
	if err != nil {
		return errors.Wrap(err, "converting to BS")
	}
	return ctx.JSON(http.StatusOK, conversion(ad, bs))
}

func (api *calendarApi) bsToAd(ctx echo.Context) error {
	date, err := requiredParam(ctx, "date")
	if err != nil {
		return err
	}
	bs, err := calendar.Parse(date, calendar.BS)
	if err != nil {
		return err
	}
	ad, err := calendar.BSToAD(bs)
	if err != nil {
		return errors.Wrap(err, "converting to AD")
	}
	return ctx.JSON(http.StatusOK, conversion(ad, bs))
}

func (api *calendarApi) dateRange(ctx echo.Context) error {
	rawStart, err := requiredParam(ctx, "start")
	if err != nil {
		return err
	}
	rawEnd, err := requiredParam(ctx, "end")
	if err != nil {
		return err
	}
	start, err := calendar.Parse(rawStart, calendar.AD)
	if err != nil {
		return err
	}
	end, err := calendar.Parse(rawEnd, calendar.AD)
	if err != nil {
		return err
	}
	rng, err := calendar.NewDateRange(start, end)
	if err != nil {
		return err
	}
	if rng.Len() > MaxRangeDays {
		return core.NewValidationError(nil, core.FieldError{
			Field: "end",
			Error: "range cannot exceed " + strconv.Itoa(MaxRangeDays) + " days",
		})
	}

	resp := RangeResponse{Start: rng.Start.String(), End: rng.End.String(), Days: rng.Len()}
	resp.Dates = make([]string, 0, resp.Days)
	rng.Each(func(d calendar.Date) bool {
		resp.Dates = append(resp.Dates, d.String())
		return true
	})
	return ctx.JSON(http.StatusOK, resp)
}

func (api *calendarApi) today(ctx echo.Context) error {
	now := NowFunc()
	resp := TodayResponse{
		Today:    calendar.Today(now, api.loc).String(),
		Tomorrow: calendar.Tomorrow(now, api.loc).String(),
		Timezone: api.loc.String(),
	}
	// today may fall outside the table; still answer with the AD dates
	if bs, err := calendar.TodayBS(now, api.loc); err == nil {
		resp.TodayBS = bs.String()
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *calendarApi) month(ctx echo.Context) error {
	m, err := strconv.Atoi(ctx.Param("month"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be a number"})
	}
	return ctx.JSON(http.StatusOK, MonthResponse{Month: m, Name: calendar.MonthName(m)})
}
