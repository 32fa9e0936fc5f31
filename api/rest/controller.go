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
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
)

type Controller struct {
	log      zerolog.Logger
	cfg      Config
	settle   Settlement
	verify   Verifier
	validate *validator.Validate
	upgrader *websocket.Upgrader
}

func NewController(log zerolog.Logger, settle Settlement, verify Verifier, options ...Option) *Controller {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	c := Controller{
		log:      log.With().Str("component", "rest_controller").Logger(),
		cfg:      cfg,
		settle:   settle,
		verify:   verify,
		validate: validator.New(),
		upgrader: &upgrader,
	}

	return &c
}

func (c *Controller) CreateAccount(ctx echo.Context) error {

	var req RegisterRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = c.validate.Struct(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := c.settle.Register(req.ID, req.Role)
	if err != nil {
		return failure(err)
	}

	return ctx.JSON(http.StatusCreated, account)
}

func (c *Controller) GetAccount(ctx echo.Context) error {

	account, err := c.settle.Account(ctx.Param("id"))
	if err != nil {
		return failure(err)
	}

	return ctx.JSON(http.StatusOK, account)
}

// CreateListing submits a new issuance. The listing in the response already
// carries the outcome of the consensus round: verified or failed.
func (c *Controller) CreateListing(ctx echo.Context) error {

	var req IssueRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = c.validate.Struct(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := c.settle.Issue(req.Issuer, req.Quantity, req.UnitPrice)
	if err != nil {
		return failure(err)
	}

	listing, err := c.settle.Listing(id)
	if err != nil {
		return failure(err)
	}

	res := IssueResponse{
		Listing: listing,
	}

	return ctx.JSON(http.StatusAccepted, res)
}

func (c *Controller) GetListing(ctx echo.Context) error {

	listing, err := c.settle.Listing(ctx.Param("id"))
	if err != nil {
		return failure(err)
	}

	return ctx.JSON(http.StatusOK, listing)
}

func (c *Controller) PurchaseListing(ctx echo.Context) error {

	var req PurchaseRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = c.validate.Struct(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	receipt, err := c.settle.Purchase(req.Buyer, ctx.Param("id"))
	if err != nil {
		return failure(err)
	}

	return ctx.JSON(http.StatusOK, receipt)
}

func (c *Controller) GetMarketplace(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.settle.Marketplace())
}

func (c *Controller) GetChain(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.settle.Chain())
}

func (c *Controller) VerifyChain(ctx echo.Context) error {

	height, err := c.verify.Verify()
	if errors.Is(err, ledger.ErrIntegrity) {
		c.log.Warn().Err(err).Uint64("height", height).Msg("chain integrity violated")
		res := VerifyResponse{
			Intact: false,
			Height: height,
		}
		return ctx.JSON(http.StatusOK, res)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	blocks := c.settle.Chain()
	res := VerifyResponse{
		Intact: true,
		Height: blocks[len(blocks)-1].Height,
	}

	return ctx.JSON(http.StatusOK, res)
}

// Subscribe upgrades the request to a websocket and attaches it as an
// observer. It returns once the client disconnects.
func (c *Controller) Subscribe(ctx echo.Context) error {

	// The upgrader already replies to the client on failure.
	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.log.Debug().Err(err).Msg("could not upgrade connection")
		return nil
	}

	socket := NewSocket(conn, c.cfg.WriteTimeout)
	log := c.log.With().Str("observer", socket.ID()).Logger()

	err = c.settle.Subscribe(c.cfg.Wrap(socket))
	if err != nil {
		log.Error().Err(err).Msg("could not subscribe observer")
		_ = socket.Close()
		return nil
	}

	log.Info().Str("remote", ctx.RealIP()).Msg("observer subscribed")

	socket.Wait()

	err = c.settle.Unsubscribe(socket.ID())
	if err != nil {
		log.Debug().Err(err).Msg("could not unsubscribe observer")
	}
	_ = socket.Close()

	log.Info().Msg("observer unsubscribed")

	return nil
}
