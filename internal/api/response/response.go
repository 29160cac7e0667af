// Package response is the single place the API's JSON envelope is built.
// Every reply carries a success discriminator; failures carry a message,
// paginated lists carry a pagination block.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

func Paginated(c echo.Context, data interface{}, page, limit int, total int64) error {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:  page,
			Pages: pages,
			Limit: limit,
			Total: total,
		},
	})
}

func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

func BadRequest(c echo.Context, message string) error {
	return Fail(c, http.StatusBadRequest, message)
}

func NotFound(c echo.Context, message string) error {
	return Fail(c, http.StatusNotFound, message)
}

func Internal(c echo.Context, message string) error {
	return Fail(c, http.StatusInternalServerError, message)
}
