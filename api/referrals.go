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

	"github.com/gin-gonic/gin"

	model2 "github.com/ministryofjustice/delius-api/api/model"
	"github.com/ministryofjustice/delius-api/model"
)

func (a Api) bindReferralSent(c *gin.Context) (string, *model.ReferralSentRequest) {
	crn, passed := c.Params.Get("crn")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "crn is required. pass crn in the route /:crn"})
		return "", nil
	}

	var body model2.ReferralSent
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return "", nil
	}
	if err := body.ValidateReferralSent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return "", nil
	}

	request, err := body.ToReferralSentRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return "", nil
	}
	return crn, request
}

func (a Api) ReferralSent(c *gin.Context) {
	crn, request := a.bindReferralSent(c)
	if request == nil {
		return
	}

	resp, err := a.delius.CreateNsiReferral(c.Request.Context(), crn, *request)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ReferralMatch(c *gin.Context) {
	crn, request := a.bindReferralSent(c)
	if request == nil {
		return
	}

	existing, err := a.delius.GetExistingMatchingNsi(c.Request.Context(), crn, *request)
	if err != nil {
		handleError(c, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching NSI found"})
		return
	}

	c.JSON(http.StatusOK, model.NsiDto{ID: existing.NsiID})
}
