package dotxch

import (
	"errors"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
)

const historyLimit = 100

func (s *Dotxch) runAPI(port string) {
	s.registerRoutes()
	if err := s.api.Run(port); err != nil {
		panic(err)
	}
}

func (s *Dotxch) registerRoutes() {
	r := s.api
	r.Use(common.CORSMiddleware(), common.RequestIdMiddleware(), ResolverHeaderMiddleware())
	if s.limiter.Limit > 0 {
		r.Use(common.LimiterMiddleware(s.limiter.Limit, s.limiter.Period, s.config.IsWhitelisted))
	}
	v1 := r.Group("/")
	{
		v1.GET("/", s.hello)
		v1.GET("/resolve", s.resolveDomain)
		v1.GET("/info", s.getInfo)
		v1.GET("/domains/:name/history", s.getHistory)
		v1.POST("/watch", s.watchDomain)
		v1.DELETE("/watch/:name", s.unwatchDomain)
	}
}

func errorResponse(c *gin.Context, code int, msg string) {
	c.JSON(code, schema.RespErr{Err: msg})
}

func (s *Dotxch) hello(c *gin.Context) {
	c.Header("Cache-Control", schema.CacheControl)
	c.String(http.StatusOK, "Success!")
}

func (s *Dotxch) resolveDomain(c *gin.Context) {
	raw := c.Query("domain_name")
	if raw == "" {
		errorResponse(c, http.StatusBadRequest, "No domain name provided")
		return
	}
	name, err := ProcessDomainName(raw)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var launcherID *types.Bytes32
	if lid := c.Query("launcher_id"); lid != "" {
		id, err := types.HexToBytes32(lid)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid launcher id")
			return
		}
		launcherID = &id
	}

	grace := s.config.GetParam().AllowGracePeriod
	if g := c.Query("grace_period"); g != "" {
		if grace, err = strconv.ParseBool(g); err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid grace_period")
			return
		}
	}

	res, err := s.Resolve(c.Request.Context(), name, launcherID, grace)
	if err != nil {
		log.Error("s.Resolve()", "err", err, "domain", name, "requestId", c.GetString(common.RequestIdHeader))
		code := http.StatusInternalServerError
		if errors.Is(err, schema.ErrNotSynced) {
			code = http.StatusServiceUnavailable
		}
		errorResponse(c, code, err.Error())
		return
	}
	c.Header("Cache-Control", schema.CacheControl)
	c.JSON(http.StatusOK, res)
}

func (s *Dotxch) getInfo(c *gin.Context) {
	ctx := c.Request.Context()
	synced, err := s.engine.Ledger().IsSynced(ctx)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, err.Error())
		return
	}
	info := schema.RespInfo{
		Version: schema.ResolverVersion,
		Network: s.network,
		Synced:  synced,
	}
	if b, ts, err := s.engine.LatestTimestamp(ctx); err == nil {
		info.LatestHeight = b.Height
		info.LatestTimestamp = ts
	} else {
		log.Warn("s.engine.LatestTimestamp()", "err", err)
	}
	c.JSON(http.StatusOK, info)
}

func (s *Dotxch) getHistory(c *gin.Context) {
	name, err := ProcessDomainName(c.Param("name"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	idx, err := s.wdb.GetIndexByName(name)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	hist, err := s.wdb.GetHistoryByName(name, historyLimit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespHistory{DomainName: name, Index: idx, History: hist})
}

func (s *Dotxch) watchDomain(c *gin.Context) {
	req := schema.ReqWatch{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	name, err := ProcessDomainName(req.DomainName)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.wdb.AddWatched(name); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.ReqWatch{DomainName: name})
}

func (s *Dotxch) unwatchDomain(c *gin.Context) {
	name, err := ProcessDomainName(c.Param("name"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.wdb.RemoveWatched(name); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
