package events

import (
	"encoding/hex"

	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/txsystem/market"
	"github.com/carbonmarket/carbon-controller-go/types"
)

/*
NewAuditLog subscribes a handler which writes every retirement record to the
logger. Paired with a JSON file logger (see logger package) it produces an
append only audit trail for off-line consumers.
*/
func NewAuditLog(b *Bus, log *zap.Logger) (func(), error) {
	return b.SubscribeRetirements(func(rec *market.RetirementRecord) {
		id, err := rec.ID()
		if err != nil {
			log.Error("calculating retirement record ID", zap.Error(err))
		}
		log.Info("retirement",
			zap.String("id", hex.EncodeToString(id)),
			zap.Stringer("asset", rec.AssetCode),
			zap.Stringer("holder", rec.Holder),
			zap.String("amount", types.FormatAmount(rec.Amount)),
			zap.Int64("project_id", rec.ProjectID),
			zap.Int32("vintage_year", rec.VintageYear),
			zap.String("note", rec.Note),
		)
	})
}
