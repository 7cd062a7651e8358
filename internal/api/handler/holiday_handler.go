package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/dto"
	"sad/backend/internal/service"
	"sad/backend/pkg/response"
)

// HolidayHandler national, regional and local holidays
type HolidayHandler struct {
	holidaySvc service.HolidayService
}

// NewHolidayHandler creates a HolidayHandler
func NewHolidayHandler(holidaySvc service.HolidayService) *HolidayHandler {
	return &HolidayHandler{holidaySvc: holidaySvc}
}

// ListHolidays
// GET /api/v1/holidays?year=&month=&region=
func (h *HolidayHandler) ListHolidays(c *gin.Context) {
	var req dto.HolidayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	list, err := h.holidaySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CheckHoliday
// GET /api/v1/holidays/check?date=&region=
func (h *HolidayHandler) CheckHoliday(c *gin.Context) {
	var req dto.HolidayCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "date is required")
		return
	}

	result, err := h.holidaySvc.Check(c.Request.Context(), &req)
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateHoliday
// POST /api/v1/holidays
func (h *HolidayHandler) CreateHoliday(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	holiday, err := h.holidaySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.Created(c, holiday)
}

// UpdateHoliday
// PUT /api/v1/holidays/:id
func (h *HolidayHandler) UpdateHoliday(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	holiday, err := h.holidaySvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, holiday)
}

// DeleteHoliday
// DELETE /api/v1/holidays/:id
func (h *HolidayHandler) DeleteHoliday(c *gin.Context) {
	id, ok := MustGetIDParam(c)
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.holidaySvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportHolidays accepts an uploaded .ics file (multipart field "file") or
// a calendar URL; with neither the configured calendar is fetched.
// POST /api/v1/holidays/import
func (h *HolidayHandler) ImportHolidays(c *gin.Context) {
	var req dto.ImportHolidaysRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "invalid parameters")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var (
		result *dto.ImportHolidaysResponse
		err    error
	)
	if fh, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := fh.Open()
		if oerr != nil {
			response.BadRequest(c, 10001, "cannot read the uploaded file")
			return
		}
		defer f.Close()
		result, err = h.holidaySvc.ImportICS(c.Request.Context(), f, &req, callerID)
	} else {
		result, err = h.holidaySvc.ImportURL(c.Request.Context(), &req, callerID)
	}
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportHolidays the year's holidays as an iCalendar file
// GET /api/v1/holidays/export.ics?year=&region=
func (h *HolidayHandler) ExportHolidays(c *gin.Context) {
	var req dto.HolidayExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "year is required")
		return
	}

	content, err := h.holidaySvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleHolidayError(c, err)
		return
	}

	response.Attachment(c, "text/calendar; charset=utf-8", fmt.Sprintf("festivos_%d.ics", req.Year), []byte(content))
}

func (h *HolidayHandler) handleHolidayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHolidayNotFound):
		response.NotFound(c, 15001, "holiday not found")
	case errors.Is(err, service.ErrHolidayExists):
		response.Conflict(c, 15002, "a holiday already exists on that date for the region")
	case errors.Is(err, service.ErrInvalidCalendar):
		response.BadRequest(c, 15003, "invalid iCalendar content")
	case errors.Is(err, service.ErrInvalidCalendarURL):
		response.BadRequest(c, 15004, "invalid calendar url")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 15005, "invalid date, expected YYYY-MM-DD")
	default:
		response.InternalError(c)
	}
}
