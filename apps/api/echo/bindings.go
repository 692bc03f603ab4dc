package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

var areaParam = "area"

// AreaFilter binds `?area=math&area=sensorial` and `?area=math,sensorial`.
type AreaFilter struct {
	Areas []string
}

func (af *AreaFilter) Bind(ctx echo.Context) {
	for _, val := range ctx.QueryParams()[areaParam] {
		for _, area := range strings.Split(val, ",") {
			if area = strings.TrimSpace(area); area != "" {
				af.Areas = append(af.Areas, area)
			}
		}
	}
}
