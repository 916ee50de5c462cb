package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionBinaryOpened     AuditAction = "BINARY_OPENED"
	AuditActionBinaryResolved   AuditAction = "BINARY_RESOLVED"
	AuditActionTradeOpened      AuditAction = "TRADE_OPENED"
	AuditActionTradeClosed      AuditAction = "TRADE_CLOSED"
	AuditActionTradeForceClosed AuditAction = "TRADE_FORCE_CLOSED"
	AuditActionUserFrozenAML    AuditAction = "USER_FROZEN_AML"
	AuditActionAMLResolved      AuditAction = "AML_RESOLVED"
	AuditActionSettingsUpdated  AuditAction = "SETTINGS_UPDATED"
)

// AuditTarget names the kind of entity an entry refers to.
type AuditTarget string

const (
	AuditTargetBinaryTrade AuditTarget = "BINARY_TRADE"
	AuditTargetMarginTrade AuditTarget = "TRADE"
	AuditTargetAccount     AuditTarget = "USER"
	AuditTargetAMLCheck    AuditTarget = "AML_CHECK"
	AuditTargetSettings    AuditTarget = "SETTINGS"
)

var ErrAuditMetadataMismatch = errors.New("audit metadata does not match action")

// AuditMetadata is implemented by one struct per action code.
type AuditMetadata interface {
	AuditAction() AuditAction
}

type BinaryOpenedMeta struct {
	AccountID  uuid.UUID       `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	Stake      decimal.Decimal `json:"stake"`
	EntryPrice decimal.Decimal `json:"entry"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

type BinaryResolvedMeta struct {
	AccountID    uuid.UUID       `json:"user_id"`
	Symbol       string          `json:"symbol"`
	Direction    Direction       `json:"direction"`
	EntryPrice   decimal.Decimal `json:"entry"`
	ExitPrice    decimal.Decimal `json:"exit"`
	Result       Result          `json:"result"`
	Payout       decimal.Decimal `json:"payout"`
	PayoutRate   decimal.Decimal `json:"payout_rate"`
	WalletLocked bool            `json:"wallet_locked,omitempty"`
}

type TradeOpenedMeta struct {
	AccountID  uuid.UUID       `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	EntryPrice decimal.Decimal `json:"entry"`
}

type TradeClosedMeta struct {
	AccountID  uuid.UUID       `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	EntryPrice decimal.Decimal `json:"entry"`
	ExitPrice  decimal.Decimal `json:"exit"`
	PnL        decimal.Decimal `json:"pnl"`
}

type TradeForceClosedMeta struct {
	TradeClosedMeta
	Reason string `json:"reason"`
}

type UserFrozenAMLMeta struct {
	Reason  string    `json:"reason"`
	CheckID uuid.UUID `json:"check_id"`
}

type AMLResolvedMeta struct {
	CheckID uuid.UUID `json:"check_id"`
	Notes   string    `json:"notes"`
}

type SettingsUpdatedMeta struct {
	Key      string `json:"key"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

func (BinaryOpenedMeta) AuditAction() AuditAction     { return AuditActionBinaryOpened }
func (BinaryResolvedMeta) AuditAction() AuditAction   { return AuditActionBinaryResolved }
func (TradeOpenedMeta) AuditAction() AuditAction      { return AuditActionTradeOpened }
func (TradeClosedMeta) AuditAction() AuditAction      { return AuditActionTradeClosed }
func (TradeForceClosedMeta) AuditAction() AuditAction { return AuditActionTradeForceClosed }
func (UserFrozenAMLMeta) AuditAction() AuditAction    { return AuditActionUserFrozenAML }
func (AMLResolvedMeta) AuditAction() AuditAction      { return AuditActionAMLResolved }
func (SettingsUpdatedMeta) AuditAction() AuditAction  { return AuditActionSettingsUpdated }

// AuditEntry is an append-only record of a state-changing action.
type AuditEntry struct {
	ID         uuid.UUID     `json:"id"`
	ActorID    *uuid.UUID    `json:"actor_id,omitempty"` // nil for SYSTEM
	ActorRole  Role          `json:"actor_role"`
	Action     AuditAction   `json:"action"`
	TargetType AuditTarget   `json:"target_type"`
	TargetID   string        `json:"target_id"`
	Metadata   AuditMetadata `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewAuditEntry builds an entry whose action is taken from the metadata type.
func NewAuditEntry(actor Actor, target AuditTarget, targetID string, meta AuditMetadata) *AuditEntry {
	e := &AuditEntry{
		ID:         uuid.New(),
		ActorRole:  actor.Role,
		Action:     meta.AuditAction(),
		TargetType: target,
		TargetID:   targetID,
		Metadata:   meta,
		CreatedAt:  time.Now().UTC(),
	}
	if !actor.IsSystem() {
		id := actor.ID
		e.ActorID = &id
	}
	if e.ActorRole == "" {
		e.ActorRole = RoleSystem
	}
	return e
}

// Validate rejects entries whose metadata shape does not belong to the action.
func (e *AuditEntry) Validate() error {
	if e.Metadata == nil {
		return fmt.Errorf("%w: %s has no metadata", ErrAuditMetadataMismatch, e.Action)
	}
	if e.Metadata.AuditAction() != e.Action {
		return fmt.Errorf("%w: %s carries %s metadata", ErrAuditMetadataMismatch, e.Action, e.Metadata.AuditAction())
	}
	if e.TargetID == "" {
		return fmt.Errorf("audit entry %s has no target", e.Action)
	}
	return nil
}

// DecodeAuditMetadata parses a stored metadata blob into the struct for action.
func DecodeAuditMetadata(action AuditAction, raw []byte) (AuditMetadata, error) {
	var meta AuditMetadata
	switch action {
	case AuditActionBinaryOpened:
		meta = &BinaryOpenedMeta{}
	case AuditActionBinaryResolved:
		meta = &BinaryResolvedMeta{}
	case AuditActionTradeOpened:
		meta = &TradeOpenedMeta{}
	case AuditActionTradeClosed:
		meta = &TradeClosedMeta{}
	case AuditActionTradeForceClosed:
		meta = &TradeForceClosedMeta{}
	case AuditActionUserFrozenAML:
		meta = &UserFrozenAMLMeta{}
	case AuditActionAMLResolved:
		meta = &AMLResolvedMeta{}
	case AuditActionSettingsUpdated:
		meta = &SettingsUpdatedMeta{}
	default:
		return nil, fmt.Errorf("unknown audit action %q", action)
	}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", action, err)
	}
	return meta, nil
}
