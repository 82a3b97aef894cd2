package reminder

import (
	"go.uber.org/zap"
)

// LogNotifier delivers reminders to the server log. The browser client owns
// the audible/modals side; on the server this keeps an auditable trail of
// every fired reminder.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(alert Alert) error {
	n.log.Info("medicine due",
		zap.Int("medicine_id", alert.MedicineID),
		zap.String("name", alert.Name),
		zap.String("minute", alert.Minute),
	)
	return nil
}

func (n *LogNotifier) PlaySound(tone string, customData *string) error {
	n.log.Debug("reminder tone", zap.String("tone", tone), zap.Bool("custom", customData != nil))
	return nil
}
