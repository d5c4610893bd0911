package middleware

import (
	"net/http"

	"github.com/coolAppl3/hangoutio/internal/services"
	"github.com/coolAppl3/hangoutio/internal/utils"
	"gorm.io/gorm"
)

var (
	db      *gorm.DB
	auth    *services.AuthService
	limiter *services.RateLimitService
)

// Init binds the middleware package to a database handle. Must run before the
// router is built.
func Init(gdb *gorm.DB) {
	db = gdb
	auth = services.NewAuthService(gdb)
	limiter = services.NewRateLimitService(gdb)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if svcErr, ok := services.AsServiceError(err); ok {
		utils.RespondError(w, svcErr.Status, svcErr.Reason, svcErr.Message, svcErr.Data)
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, services.ReasonInternal, "Something went wrong.", nil)
}
