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

package settlement

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optakt/credit-ledger/models/ledger"
)

// Settlement owns the accounts and listings of the marketplace and chains every
// committed transaction. All mutations are serialized by a single read-write
// lock.
type Settlement struct {
	log       zerolog.Logger
	cfg       Config
	chain     Chain
	gate      Gate
	publisher Publisher

	mutex    *sync.RWMutex
	accounts map[string]*ledger.Account
	listings map[string]*ledger.Listing
	order    []string
}

// New creates a new settlement without accounts or listings.
func New(log zerolog.Logger, chain Chain, gate Gate, publisher Publisher, options ...Option) *Settlement {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	s := Settlement{
		log:       log.With().Str("component", "settlement").Logger(),
		cfg:       cfg,
		chain:     chain,
		gate:      gate,
		publisher: publisher,
		mutex:     &sync.RWMutex{},
		accounts:  make(map[string]*ledger.Account),
		listings:  make(map[string]*ledger.Listing),
	}

	return &s
}

// Register creates an account with a zero balance.
func (s *Settlement) Register(id string, role ledger.Role) (ledger.Account, error) {

	if id == "" {
		return ledger.Account{}, fmt.Errorf("could not register account: %w", ledger.ErrInvalidAccount)
	}
	if !role.Valid() {
		return ledger.Account{}, fmt.Errorf("could not register account (role: %s): %w", role, ledger.ErrInvalidRole)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.accounts[id]
	if ok {
		return ledger.Account{}, fmt.Errorf("could not register account (id: %s): %w", id, ledger.ErrDuplicateAccount)
	}

	account := ledger.Account{
		ID:      id,
		Role:    role,
		Balance: 0,
	}
	if s.cfg.Archive != nil {
		err := s.cfg.Archive.Account(account)
		if err != nil {
			return ledger.Account{}, fmt.Errorf("could not archive account (id: %s): %w", id, err)
		}
	}
	s.accounts[id] = &account

	s.publisher.Publish(ledger.Message{
		Topic:   ledger.TopicBalance,
		Payload: []ledger.BalanceDelta{{Account: id, Balance: 0, Delta: 0}},
	})

	s.log.Info().Str("account", id).Str("role", string(role)).Msg("account registered")

	return account, nil
}

// Issue creates a pending listing for the issuer and submits it to the quorum
// gate. The listing is visible as pending while the gate decides. When the
// gate commits, the issuance is chained, the issuer is credited and the
// listing becomes verified; when it aborts, the listing fails. An aborted
// issuance is not an error.
func (s *Settlement) Issue(issuer string, quantity int64, unitPrice float64) (string, error) {

	if quantity <= 0 {
		return "", fmt.Errorf("could not issue listing (quantity: %d): %w", quantity, ledger.ErrInvalidAmount)
	}
	if !(unitPrice > 0) || math.IsInf(unitPrice, 1) {
		return "", fmt.Errorf("could not issue listing (unit price: %f): %w", unitPrice, ledger.ErrInvalidAmount)
	}

	listing, err := s.open(issuer, quantity, unitPrice)
	if err != nil {
		return "", fmt.Errorf("could not issue listing: %w", err)
	}

	payload := ledger.Payload{
		Kind:      ledger.KindIssuance,
		ListingID: listing.ID,
		Issuer:    issuer,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Outcome:   ledger.StatusVerified,
	}
	proposal := ledger.Proposal{
		ID:        uuid.New().String(),
		Kind:      ledger.KindIssuance,
		Payload:   payload,
		Requester: issuer,
	}
	decision := s.gate.Decide(proposal)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	err = s.settle(listing.ID, payload, decision)
	if err != nil {
		return "", fmt.Errorf("could not settle issuance (listing: %s): %w", listing.ID, err)
	}

	return listing.ID, nil
}

func (s *Settlement) open(issuer string, quantity int64, unitPrice float64) (ledger.Listing, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	account, ok := s.accounts[issuer]
	if !ok {
		return ledger.Listing{}, fmt.Errorf("%w (id: %s)", ledger.ErrUnknownAccount, issuer)
	}
	if account.Role != ledger.RoleIssuer {
		return ledger.Listing{}, fmt.Errorf("%w (id: %s, role: %s)", ledger.ErrWrongRole, issuer, account.Role)
	}
	_, err := credit(account.Balance, quantity)
	if err != nil {
		return ledger.Listing{}, fmt.Errorf("could not credit issuer (id: %s): %w", issuer, err)
	}

	listing := ledger.Listing{
		ID:        uuid.New().String(),
		Issuer:    issuer,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Status:    ledger.StatusPending,
		CreatedAt: s.cfg.Clock().UTC(),
	}
	s.listings[listing.ID] = &listing
	s.order = append(s.order, listing.ID)

	s.log.Debug().Str("listing", listing.ID).Str("issuer", issuer).Msg("listing pending")

	return listing, nil
}

// settle applies the gate decision for a pending listing. It must be called
// with the write lock held.
func (s *Settlement) settle(id string, payload ledger.Payload, decision ledger.Decision) error {

	listing := s.listings[id]

	log := s.log.With().
		Str("listing", id).
		Str("outcome", decision.Outcome.String()).
		Int("prepare", decision.Tally.Prepare).
		Int("commit", decision.Tally.Commit).
		Int("threshold", decision.Tally.Threshold).
		Logger()

	if decision.Outcome != ledger.OutcomeCommitted {
		err := s.transition(listing, ledger.StatusFailed)
		if err != nil {
			return err
		}
		s.publish()
		log.Info().Str("reason", decision.Tally.Reason).Msg("issuance aborted")
		return nil
	}

	err := ledger.Transition(listing.Status, ledger.StatusVerified)
	if err != nil {
		return fmt.Errorf("could not verify listing: %w", err)
	}

	// Other issuances may have been credited while the gate was deciding.
	issuer := s.accounts[listing.Issuer]
	balance, err := credit(issuer.Balance, listing.Quantity)
	if err != nil {
		return s.fail(listing, fmt.Errorf("could not credit issuer (id: %s): %w", issuer.ID, err))
	}

	block, err := s.chain.Append(payload)
	if err != nil {
		return s.fail(listing, fmt.Errorf("could not append issuance block: %w", err))
	}

	issuer.Balance = balance
	listing.Status = ledger.StatusVerified
	s.archive(issuer)

	s.publish(ledger.BalanceDelta{Account: issuer.ID, Balance: issuer.Balance, Delta: listing.Quantity})

	log.Info().Uint64("height", block.Height).Int64("balance", issuer.Balance).Msg("issuance committed")

	return nil
}

// Purchase moves the credits of a verified listing from its issuer to the
// buyer, chains the transfer and removes the listing, all as one atomic step.
func (s *Settlement) Purchase(buyer string, listingID string) (ledger.Receipt, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	listing, ok := s.listings[listingID]
	if !ok {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (id: %s): %w", listingID, ledger.ErrUnknownListing)
	}
	if listing.Status != ledger.StatusVerified {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (id: %s, status: %s): %w", listingID, listing.Status, ledger.ErrListingNotAvailable)
	}
	account, ok := s.accounts[buyer]
	if !ok {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (buyer: %s): %w", buyer, ledger.ErrUnknownAccount)
	}
	seller, ok := s.accounts[listing.Issuer]
	if !ok {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (seller: %s): %w", listing.Issuer, ledger.ErrUnknownAccount)
	}
	if account.ID == seller.ID {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (id: %s): %w", listingID, ledger.ErrSelfPurchase)
	}
	if seller.Balance < listing.Quantity {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (seller: %s, balance: %d, quantity: %d): %w", seller.ID, seller.Balance, listing.Quantity, ledger.ErrInsufficientBalance)
	}
	balance, err := credit(account.Balance, listing.Quantity)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("could not credit buyer (id: %s): %w", account.ID, err)
	}
	err = ledger.Transition(listing.Status, ledger.StatusDeleted)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("could not purchase listing (id: %s): %w", listingID, err)
	}

	payload := ledger.Payload{
		Kind:      ledger.KindTransfer,
		ListingID: listing.ID,
		Buyer:     account.ID,
		Seller:    seller.ID,
		Quantity:  listing.Quantity,
		UnitPrice: listing.UnitPrice,
	}
	block, err := s.chain.Append(payload)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("could not append transfer block: %w", err)
	}

	seller.Balance -= listing.Quantity
	account.Balance = balance
	s.remove(listing.ID)
	s.archive(seller)
	s.archive(account)

	s.publish(
		ledger.BalanceDelta{Account: seller.ID, Balance: seller.Balance, Delta: -listing.Quantity},
		ledger.BalanceDelta{Account: account.ID, Balance: account.Balance, Delta: listing.Quantity},
	)

	s.log.Info().
		Str("listing", listing.ID).
		Str("seller", seller.ID).
		Str("buyer", account.ID).
		Int64("quantity", listing.Quantity).
		Uint64("height", block.Height).
		Msg("listing purchased")

	receipt := ledger.Receipt{
		ListingID: listing.ID,
		Seller:    seller.ID,
		Buyer:     account.ID,
		Quantity:  listing.Quantity,
		UnitPrice: listing.UnitPrice,
	}

	return receipt, nil
}

// Marketplace returns all verified listings, oldest first.
func (s *Settlement) Marketplace() []ledger.Listing {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.marketplace()
}

// Account returns the account with the given identifier.
func (s *Settlement) Account(id string) (ledger.Account, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return ledger.Account{}, fmt.Errorf("could not get account (id: %s): %w", id, ledger.ErrUnknownAccount)
	}
	return *account, nil
}

// Accounts returns all accounts, sorted by identifier.
func (s *Settlement) Accounts() []ledger.Account {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.snapshot()
}

// Listing returns the listing with the given identifier, whatever its status.
// Purchased listings no longer exist.
func (s *Settlement) Listing(id string) (ledger.Listing, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return ledger.Listing{}, fmt.Errorf("could not get listing (id: %s): %w", id, ledger.ErrUnknownListing)
	}
	return *listing, nil
}

// Chain returns the blocks of the underlying ledger, oldest first.
func (s *Settlement) Chain() []ledger.Block {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.chain.Blocks()
}

// Subscribe attaches the observer and queues the current chain, marketplace
// and balances as its first messages. No mutation can happen between taking
// the snapshot and attaching.
func (s *Settlement) Subscribe(observer ledger.Observer) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	accounts := s.snapshot()
	deltas := make([]ledger.BalanceDelta, 0, len(accounts))
	for _, account := range accounts {
		deltas = append(deltas, ledger.BalanceDelta{Account: account.ID, Balance: account.Balance, Delta: 0})
	}

	err := s.publisher.Attach(observer, s.messages(deltas)...)
	if err != nil {
		return fmt.Errorf("could not subscribe observer: %w", err)
	}

	return nil
}

// Unsubscribe detaches the observer with the given identifier.
func (s *Settlement) Unsubscribe(id string) error {
	err := s.publisher.Detach(id)
	if err != nil {
		return fmt.Errorf("could not unsubscribe observer: %w", err)
	}
	return nil
}

// Replay rebuilds accounts, balances and open listings from archived accounts
// and blocks. Balances are recomputed from the blocks alone. It can only be
// used on a settlement that has no state yet.
func (s *Settlement) Replay(accounts []ledger.Account, blocks []ledger.Block) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.accounts) != 0 || len(s.listings) != 0 {
		return fmt.Errorf("could not replay into settlement with existing state")
	}

	state := make(map[string]*ledger.Account, len(accounts))
	for _, account := range accounts {
		if !account.Role.Valid() {
			return fmt.Errorf("could not replay account (id: %s, role: %s): %w", account.ID, account.Role, ledger.ErrInvalidRole)
		}
		if account.Balance != 0 {
			s.log.Debug().Str("account", account.ID).Int64("archived", account.Balance).Msg("ignoring archived balance")
		}
		account := account
		account.Balance = 0
		state[account.ID] = &account
	}

	listings := make(map[string]*ledger.Listing)
	var order []string
	for _, block := range blocks {
		payload := block.Payload
		switch payload.Kind {

		case ledger.KindGenesis:
			continue

		case ledger.KindIssuance:
			issuer, ok := state[payload.Issuer]
			if !ok {
				return fmt.Errorf("could not replay issuance (height: %d, issuer: %s): %w", block.Height, payload.Issuer, ledger.ErrIntegrity)
			}
			if payload.Quantity <= 0 {
				return fmt.Errorf("could not replay issuance (height: %d, quantity: %d): %w", block.Height, payload.Quantity, ledger.ErrIntegrity)
			}
			balance, err := credit(issuer.Balance, payload.Quantity)
			if err != nil {
				return fmt.Errorf("could not replay issuance (height: %d, issuer: %s): %v: %w", block.Height, payload.Issuer, err, ledger.ErrIntegrity)
			}
			issuer.Balance = balance
			listing := ledger.Listing{
				ID:        payload.ListingID,
				Issuer:    payload.Issuer,
				Quantity:  payload.Quantity,
				UnitPrice: payload.UnitPrice,
				Status:    ledger.StatusVerified,
				CreatedAt: block.Timestamp,
			}
			listings[listing.ID] = &listing
			order = append(order, listing.ID)

		case ledger.KindTransfer:
			listing, ok := listings[payload.ListingID]
			if !ok || listing.Issuer != payload.Seller {
				return fmt.Errorf("could not replay transfer (height: %d, listing: %s): %w", block.Height, payload.ListingID, ledger.ErrIntegrity)
			}
			seller := state[payload.Seller]
			buyer, ok := state[payload.Buyer]
			if !ok {
				return fmt.Errorf("could not replay transfer (height: %d, buyer: %s): %w", block.Height, payload.Buyer, ledger.ErrIntegrity)
			}
			if seller.Balance < payload.Quantity {
				return fmt.Errorf("could not replay transfer (height: %d, seller: %s): %w", block.Height, payload.Seller, ledger.ErrIntegrity)
			}
			balance, err := credit(buyer.Balance, payload.Quantity)
			if err != nil {
				return fmt.Errorf("could not replay transfer (height: %d, buyer: %s): %v: %w", block.Height, payload.Buyer, err, ledger.ErrIntegrity)
			}
			seller.Balance -= payload.Quantity
			buyer.Balance = balance
			delete(listings, listing.ID)

		default:
			return fmt.Errorf("could not replay block (height: %d, kind: %s): %w", block.Height, payload.Kind, ledger.ErrIntegrity)
		}
	}

	s.accounts = state
	s.listings = listings
	s.order = s.order[:0]
	for _, id := range order {
		_, ok := listings[id]
		if ok {
			s.order = append(s.order, id)
		}
	}

	s.log.Info().
		Int("accounts", len(state)).
		Int("blocks", len(blocks)).
		Int("listings", len(listings)).
		Msg("settlement replayed")

	return nil
}

func (s *Settlement) transition(listing *ledger.Listing, to ledger.Status) error {
	err := ledger.Transition(listing.Status, to)
	if err != nil {
		return fmt.Errorf("could not transition listing (id: %s): %w", listing.ID, err)
	}
	listing.Status = to
	return nil
}

// fail marks a pending listing as failed after a committed decision could not
// be applied, and returns the cause.
func (s *Settlement) fail(listing *ledger.Listing, cause error) error {
	err := s.transition(listing, ledger.StatusFailed)
	if err != nil {
		return err
	}
	s.publish()
	return cause
}

// credit returns the balance after adding a positive quantity. Balances that
// cannot be represented are rejected.
func credit(balance int64, quantity int64) (int64, error) {
	if balance > math.MaxInt64-quantity {
		return 0, fmt.Errorf("%w (balance: %d, credit: %d)", ledger.ErrInvalidAmount, balance, quantity)
	}
	return balance + quantity, nil
}

func (s *Settlement) remove(id string) {
	delete(s.listings, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// archive persists the updated account. Failures are only logged.
func (s *Settlement) archive(account *ledger.Account) {
	if s.cfg.Archive == nil {
		return
	}
	err := s.cfg.Archive.Account(*account)
	if err != nil {
		s.log.Warn().Err(err).Str("account", account.ID).Msg("could not archive account")
	}
}

// publish queues the chain, the marketplace and the given balance deltas for
// all observers. It must be called with the write lock held.
func (s *Settlement) publish(deltas ...ledger.BalanceDelta) {
	if deltas == nil {
		deltas = []ledger.BalanceDelta{}
	}
	s.publisher.Publish(s.messages(deltas)...)
}

func (s *Settlement) messages(deltas []ledger.BalanceDelta) []ledger.Message {
	messages := []ledger.Message{
		{Topic: ledger.TopicChain, Payload: s.chain.Blocks()},
		{Topic: ledger.TopicMarketplace, Payload: s.marketplace()},
		{Topic: ledger.TopicBalance, Payload: deltas},
	}
	return messages
}

func (s *Settlement) marketplace() []ledger.Listing {
	listings := make([]ledger.Listing, 0, len(s.order))
	for _, id := range s.order {
		listing := s.listings[id]
		if listing.Status != ledger.StatusVerified {
			continue
		}
		listings = append(listings, *listing)
	}
	return listings
}

func (s *Settlement) snapshot() []ledger.Account {
	accounts := make([]ledger.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts
}
