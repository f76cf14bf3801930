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
	"fmt"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"

	model2 "github.com/ministryofjustice/delius-api/api/model"
	"github.com/ministryofjustice/delius-api/model"
)

func (a Api) CreateOffender(c *gin.Context) {
	var newOffender model2.CreateOffender
	if err := c.ShouldBindJSON(&newOffender); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newOffender.ValidateCreateOffender(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	offender, err := newOffender.ToOffender()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.delius.CreateOffender(c.Request.Context(), offender)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetOffender(c *gin.Context) {
	crn, passed := c.Params.Get("crn")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "crn is required. pass crn in the route /:crn"})
		return
	}

	resp, err := a.delius.GetOffenderByCrn(c.Request.Context(), crn)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) generateMockOffender(c *gin.Context) {
	mockOffender := model.Offender{
		Crn:         fmt.Sprintf("X%06d", gofakeit.Number(0, 999999)),
		FirstName:   gofakeit.FirstName(),
		Surname:     gofakeit.LastName(),
		DateOfBirth: gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)),
	}

	c.JSON(http.StatusOK, mockOffender)
}
