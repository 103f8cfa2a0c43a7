package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbcFrom(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, "Profile retrieved", me)
}
