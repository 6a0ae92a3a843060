package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"myclaim/internal/apperr"
	"myclaim/internal/store"
)

func (s *server) createClaim(c *gin.Context) {
	claim, ok := bindClaim(c)
	if !ok {
		return
	}
	created, err := s.Claims.CreateClaim(c.Request.Context(), claim)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) getClaim(c *gin.Context) {
	claim, err := s.Claims.GetClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func (s *server) updateClaim(c *gin.Context) {
	claim, ok := bindClaim(c)
	if !ok {
		return
	}
	updated, err := s.Claims.UpdateClaim(c.Request.Context(), c.Param("id"), claim)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) deleteClaim(c *gin.Context) {
	if err := s.Claims.DeleteClaim(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) listClaims(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	items, total, err := s.Claims.ListClaims(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": items})
}

// The range endpoints return a bare array of every match.
func (s *server) filterByDamageScore(c *gin.Context) {
	s.filterRange(c, "min_score", "max_score", func(f *store.Filter, lo, hi *float64) {
		f.MinScore, f.MaxScore = lo, hi
	})
}

func (s *server) filterByRepairAmount(c *gin.Context) {
	s.filterRange(c, "min_amount", "max_amount", func(f *store.Filter, lo, hi *float64) {
		f.MinAmount, f.MaxAmount = lo, hi
	})
}

func (s *server) filterRange(c *gin.Context, minKey, maxKey string, set func(*store.Filter, *float64, *float64)) {
	lo, err := floatParam(c, minKey)
	if err != nil {
		writeError(c, err)
		return
	}
	hi, err := floatParam(c, maxKey)
	if err != nil {
		writeError(c, err)
		return
	}
	f := store.Filter{Limit: store.MaxLimit}
	set(&f, lo, hi)
	items, _, err := s.Claims.ListClaims(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *server) enqueueScoring(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.Claims.GetClaim(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if s.Jobs == nil {
		writeError(c, apperr.New(apperr.UpstreamService, "scoring queue not configured"))
		return
	}
	if err := s.Jobs.PushScoringJob(c.Request.Context(), id); err != nil {
		writeError(c, apperr.Upstream("queue", err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "claim_id": id})
}

func bindClaim(c *gin.Context) (store.Claim, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, apperr.Invalid("body", "invalid JSON body"))
		return store.Claim{}, false
	}
	claim, err := store.DecodeClaim(payload)
	if err != nil {
		writeError(c, err)
		return store.Claim{}, false
	}
	return claim, true
}

func parseFilter(c *gin.Context) (store.Filter, error) {
	f := store.Filter{
		ICNumber:    c.Query("ic_number"),
		VehicleMake: c.Query("vehicle_make"),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
	}
	var err error
	for key, dst := range map[string]**bool{
		"approval_flag":                 &f.ApprovalFlag,
		"at_fault_flag":                 &f.AtFaultFlag,
		"claim_reported_to_police_flag": &f.ReportedToPolice,
	} {
		if *dst, err = boolParam(c, key); err != nil {
			return f, err
		}
	}
	for key, dst := range map[string]**float64{
		"min_score":  &f.MinScore,
		"max_score":  &f.MaxScore,
		"min_amount": &f.MinAmount,
		"max_amount": &f.MaxAmount,
	} {
		if *dst, err = floatParam(c, key); err != nil {
			return f, err
		}
	}
	if f.Limit, err = intParam(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func boolParam(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Invalid(key, "must be a boolean")
	}
	return &v, nil
}

func floatParam(c *gin.Context, key string) (*float64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Invalid(key, "must be a number")
	}
	return &v, nil
}

func intParam(c *gin.Context, key string) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperr.Invalid(key, "must be a non-negative integer")
	}
	return v, nil
}
