package mail

import (
	"context"
	"fmt"

	"github.com/fairprice/fairprice-backend/internal/events"
	"github.com/fairprice/fairprice-backend/internal/goroutine"
	"github.com/fairprice/fairprice-backend/internal/logger"
)

// Outbox отправляет письма через Kafka-топик исходящей почты. Само письмо
// собирает и шлёт внешний воркер, здесь только постановка в очередь.
type Outbox struct {
	publisher *events.Publisher
}

// NewOutbox создаёт почтовый outbox поверх издателя событий.
func NewOutbox(publisher *events.Publisher) *Outbox {
	return &Outbox{publisher: publisher}
}

// Send ставит письмо в очередь в фоне. Ошибка доставки не блокирует вызвавшую
// операцию и попадает только в лог.
func (o *Outbox) Send(to, subject, body string) {
	goroutine.SafeGo(func() {
		if err := o.publisher.Email(context.Background(), events.EmailEvent{
			To:      to,
			Subject: subject,
			Body:    body,
		}); err != nil {
			logger.Log.Errorf("mail: не удалось поставить письмо в очередь для %s: %v", to, err)
		}
	})
}

// SendOrderConfirmation подтверждает покупателю оформление заказа.
func (o *Outbox) SendOrderConfirmation(to, orderNumber string, amount float64) {
	o.Send(to,
		fmt.Sprintf("Заказ %s оформлен", orderNumber),
		fmt.Sprintf("Ваш заказ %s на сумму %.2f принят. Средства удержаны в escrow и будут переданы продавцу после получения товара.", orderNumber, amount))
}

// SendDisputeOpened уведомляет продавца об открытом споре.
func (o *Outbox) SendDisputeOpened(to, orderNumber, reason string) {
	o.Send(to,
		fmt.Sprintf("Открыт спор по заказу %s", orderNumber),
		fmt.Sprintf("По заказу %s открыт спор. Причина: %s. Средства заморожены до решения администратора.", orderNumber, reason))
}

// SendEscrowReleased уведомляет продавца о выплате.
func (o *Outbox) SendEscrowReleased(to, orderNumber string, amount float64) {
	o.Send(to,
		fmt.Sprintf("Средства по заказу %s выплачены", orderNumber),
		fmt.Sprintf("Escrow по заказу %s закрыт, к выплате %.2f.", orderNumber, amount))
}
