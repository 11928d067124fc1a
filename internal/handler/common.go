package handler // declare the package name; contains HTTP handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errNoUser is returned by getUserID when the JWT middleware did not
// place a usable user id into the request context.
var errNoUser = errors.New("no authenticated user in context")

// getUserID extracts the authenticated user's id from the echo context.
// The JWT middleware stores it under "user_id" as a uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch id := v.(type) {
	case uint64:
		if id > 0 {
			return id, nil
		}
	case string:
		// tolerate string subjects from older tokens
		if n, err := strconv.ParseUint(id, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errNoUser
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
