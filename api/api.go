package api

import (
	"github.com/gin-gonic/gin"

	delius "github.com/ministryofjustice/delius-api"
	"github.com/ministryofjustice/delius-api/api/middleware"
	"github.com/ministryofjustice/delius-api/config"
)

type Api struct {
	delius *delius.Delius
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.GET("/offenders/deltas", a.GetDeltas)
	router.DELETE("/offenders/deltas", a.DeleteDeltas)
	router.GET("/offenders/nextUpdate", a.GetNextUpdate)
	router.GET("/offenders/nextFailedUpdate", a.GetNextFailedUpdate)
	router.DELETE("/offenders/update/:id", a.DeleteDelta)
	router.PUT("/offenders/update/:id/markAsFailed", a.MarkAsFailed)

	router.POST("/offenders/crn/:crn/referral/sent", a.ReferralSent)
	router.POST("/offenders/crn/:crn/referral/match", a.ReferralMatch)

	router.POST("/offenders", a.CreateOffender)
	router.GET("/offenders/crn/:crn", a.GetOffender)

	router.GET("/mocked-offender", a.generateMockOffender)
	return a.router
}

func NewAPI(d *delius.Delius) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{delius: d, router: r}
}
