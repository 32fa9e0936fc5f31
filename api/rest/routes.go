// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package rest

import (
	"github.com/labstack/echo/v4"
)

// Routes registers the controller's endpoints on the given server.
func Routes(server *echo.Echo, ctrl *Controller) {
	server.POST("/accounts", ctrl.CreateAccount)
	server.GET("/accounts/:id", ctrl.GetAccount)
	server.POST("/listings", ctrl.CreateListing)
	server.GET("/listings/:id", ctrl.GetListing)
	server.POST("/listings/:id/purchase", ctrl.PurchaseListing)
	server.GET("/marketplace", ctrl.GetMarketplace)
	server.GET("/chain", ctrl.GetChain)
	server.GET("/chain/verify", ctrl.VerifyChain)
	server.GET("/subscribe", ctrl.Subscribe)
}
