/*
Copyright 2024 Delius API Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ministryofjustice/delius-api/internal/apierror"
)

func handleError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}

func deltaIDParam(c *gin.Context) (int64, bool) {
	raw, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return 0, false
	}
	return id, true
}

func (a Api) GetDeltas(c *gin.Context) {
	resp, err := a.delius.FindAllDeltas(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) DeleteDeltas(c *gin.Context) {
	before := c.Query("before")
	if before == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "before is required. pass an RFC3339 date-time in the before query parameter"})
		return
	}
	cutoff, err := time.Parse(time.RFC3339, before)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please format before as an RFC3339 date-time (e.g., 2021-01-20T00:00:00Z)"})
		return
	}

	deleted, err := a.delius.DeleteDeltasBefore(c.Request.Context(), cutoff)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (a Api) GetNextUpdate(c *gin.Context) {
	update, err := a.delius.LockNextUpdate(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if update == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no offender updates waiting"})
		return
	}

	c.JSON(http.StatusOK, update)
}

func (a Api) GetNextFailedUpdate(c *gin.Context) {
	update, err := a.delius.LockNextFailedUpdate(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if update == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no failed offender updates waiting"})
		return
	}

	c.JSON(http.StatusOK, update)
}

func (a Api) DeleteDelta(c *gin.Context) {
	id, ok := deltaIDParam(c)
	if !ok {
		return
	}

	if err := a.delius.DeleteDelta(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "offender delta deleted"})
}

func (a Api) MarkAsFailed(c *gin.Context) {
	id, ok := deltaIDParam(c)
	if !ok {
		return
	}

	if err := a.delius.MarkAsFailed(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "offender delta marked as failed"})
}
