package dispatch

import (
	"fmt"
	"strings"

	"github.com/rotaops/fleetline-backend/internal/lifecycle"
	"github.com/rotaops/fleetline-backend/pkg/db/models"
	"github.com/rotaops/fleetline-backend/pkg/enums"
)

// Reply texts are plain strings with a small set of conventional emoji. One
// reply goes out per inbound message.

func replyRouteList(routes []models.Route) string {
	var b strings.Builder
	b.WriteString("You have more than one route today. Which one do you mean?\n")
	for _, route := range routes {
		fmt.Fprintf(&b, "• %s\n", route.Name)
	}
	b.WriteString("Reply with the route name to pick one.")
	return b.String()
}

func replyRouteStarted(route *models.Route, deliveryCount int) string {
	return fmt.Sprintf("🚚 Route %q started with %d deliveries. Good trip!", route.Name, deliveryCount)
}

func replyRouteExited(route *models.Route) string {
	return fmt.Sprintf("Route %q was put back on the plan. Send \"start route\" when you are ready.", route.Name)
}

func replyInternalError() string {
	return "⚠️ Something went wrong on our side. Please try again in a moment."
}

func replyAlreadyFinishedToday(route *models.Route) string {
	return fmt.Sprintf("✅ Route %q is already finished for today. See you tomorrow!", route.Name)
}

func replyNothingScheduled() string {
	return "You have no route scheduled for today."
}

func replyStartRouteFirst(routeName string) string {
	return fmt.Sprintf("Route %q has not been started yet. Send \"start route\" first.", routeName)
}

func replyDeliveryNotFound(identifier string) string {
	if identifier == "" {
		return "I couldn't find an open delivery on this route."
	}
	return fmt.Sprintf("I couldn't find a delivery matching %q on this route.", identifier)
}

func replyDeliveryRecorded(delivery *models.Delivery, outcome enums.DeliveryStatus, result lifecycle.ResolveResult) string {
	var b strings.Builder
	name := delivery.CustomerName()
	if name == "" {
		name = delivery.InvoiceNumber
	}
	if outcome == enums.DeliveryStatusDelivered {
		fmt.Fprintf(&b, "✅ Delivery %s (%s) recorded as delivered.", delivery.InvoiceNumber, name)
	} else {
		fmt.Fprintf(&b, "❌ Delivery %s (%s) recorded as failed.", delivery.InvoiceNumber, name)
	}
	if result.RouteCompleted {
		b.WriteString(" That was the last one, route completed! 🎉")
	} else if result.OpenRemaining > 0 {
		fmt.Fprintf(&b, " %d deliveries to go.", result.OpenRemaining)
	}
	return b.String()
}

func replyAlreadyRecorded(delivery *models.Delivery, status enums.DeliveryStatus) string {
	return fmt.Sprintf("Delivery %s is already recorded as %s, nothing changed.", delivery.InvoiceNumber, statusLabel(status))
}

func replyWorkflowStep(delivery *models.Delivery, step enums.WorkflowStep) string {
	name := delivery.CustomerName()
	if name == "" {
		name = delivery.InvoiceNumber
	}
	switch step {
	case enums.WorkflowStepArrived:
		return fmt.Sprintf("📍 Noted, you arrived at %s.", name)
	case enums.WorkflowStepUnloadingStarted:
		return fmt.Sprintf("📦 Unloading started at %s.", name)
	default:
		return fmt.Sprintf("📦 Unloading finished at %s.", name)
	}
}

func replyFinish(route *models.Route, result lifecycle.FinishResult) string {
	if result.OpenCount > 0 {
		return fmt.Sprintf("Route %q still has %d open deliveries. Resolve them before finishing.", route.Name, result.OpenCount)
	}
	if result.Applied {
		return fmt.Sprintf("🏁 Route %q completed. Good job!", route.Name)
	}
	return fmt.Sprintf("Route %q was already completed.", route.Name)
}

func replyUndo(result lifecycle.UndoResult) string {
	if !result.Applied {
		return fmt.Sprintf("Delivery %s is not in a final state, nothing to undo.", result.Delivery.InvoiceNumber)
	}
	return fmt.Sprintf("↩️ Delivery %s is back in transit. Send the outcome again when ready.", result.Delivery.InvoiceNumber)
}

func replySummary(route *models.Route, journeyStatus enums.JourneyStatus) string {
	var delivered, failed, open int
	for _, d := range route.Deliveries {
		switch {
		case d.Status == enums.DeliveryStatusDelivered:
			delivered++
		case d.Status == enums.DeliveryStatusFailed:
			failed++
		case d.Status.IsOpen():
			open++
		}
	}
	return fmt.Sprintf("📋 Route %q: %d delivered, %d failed, %d open. Shift: %s.",
		route.Name, delivered, failed, open, journeyLabel(journeyStatus))
}

func replyListPending(route *models.Route) string {
	open := route.OpenDeliveries()
	if len(open) == 0 {
		return fmt.Sprintf("No open deliveries left on route %q.", route.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Open deliveries on %q:\n", route.Name)
	for _, d := range open {
		name := d.CustomerName()
		if name == "" {
			name = "unknown customer"
		}
		fmt.Fprintf(&b, "• %s - %s\n", d.InvoiceNumber, name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func replyDetails(delivery *models.Delivery) string {
	name := delivery.CustomerName()
	if name == "" {
		name = "unknown customer"
	}
	return fmt.Sprintf("Invoice %s - %s\nStatus: %s\nWeight: %s kg, volume: %s m³, value: %s",
		delivery.InvoiceNumber, name, statusLabel(delivery.Status),
		delivery.WeightKg.String(), delivery.VolumeM3.String(), delivery.ValueAmount.String())
}

func replyNoLocationOnFile(delivery *models.Delivery) string {
	name := delivery.CustomerName()
	if name == "" {
		name = delivery.InvoiceNumber
	}
	if delivery.Customer != nil && delivery.Customer.Address != nil {
		return fmt.Sprintf("No pin on file for %s. Address: %s", name, *delivery.Customer.Address)
	}
	return fmt.Sprintf("No location on file for %s.", name)
}

func replyShiftEvent(eventType enums.JourneyEventType) string {
	switch eventType {
	case enums.JourneyEventJourneyStart:
		return "🕗 Shift started. Drive safe!"
	case enums.JourneyEventJourneyEnd:
		return "🌙 Shift ended. Rest well!"
	case enums.JourneyEventMealStart:
		return "🍽️ Meal break started. Enjoy!"
	case enums.JourneyEventWaitStart:
		return "⏳ Wait break started."
	case enums.JourneyEventRestStart:
		return "😴 Rest break started."
	default:
		return "▶️ Break finished, back on the road."
	}
}

func replyNoBreakOpen() string {
	return "You have no break open right now."
}

func replyIncident(occurrenceType enums.OccurrenceType) string {
	return fmt.Sprintf("⚠️ Incident (%s) registered. The base has been notified, stay safe.", occurrenceType)
}

func replyDelay() string {
	return "⏰ Delay noted, I'll let the base know."
}

func replyContact(label string, phone *string) string {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return fmt.Sprintf("No %s phone on file for your account.", strings.ToLower(label))
	}
	return fmt.Sprintf("📞 %s: %s", label, *phone)
}

func replyGreeting(tenant *models.Tenant, driver *models.Driver) string {
	if tenant.GreetingTemplate != nil && strings.TrimSpace(*tenant.GreetingTemplate) != "" {
		return strings.ReplaceAll(*tenant.GreetingTemplate, "{{name}}", driver.Name)
	}
	return fmt.Sprintf("👋 Hello %s! Send \"help\" to see what I can do.", driver.Name)
}

func replyHelp() string {
	return strings.Join([]string{
		"Here's what you can send me:",
		"• \"start route\" to begin your route",
		"• \"delivered <invoice or customer>\" / \"failed <invoice>, reason\"",
		"• \"arrived\", \"unloading\", \"done unloading\"",
		"• \"start shift\", \"end shift\", \"break\", \"back\"",
		"• \"summary\", \"pending\", \"details <invoice>\"",
		"• \"finish\" when every delivery is resolved",
	}, "\n")
}

func replyUnknown() string {
	return "Sorry, I didn't catch that. Send \"help\" to see what I understand."
}

func statusLabel(status enums.DeliveryStatus) string {
	switch status {
	case enums.DeliveryStatusInTransit:
		return "in transit"
	default:
		return string(status)
	}
}

func journeyLabel(status enums.JourneyStatus) string {
	switch status {
	case enums.JourneyStatusOffJourney:
		return "not started"
	case enums.JourneyStatusOnJourney:
		return "on the road"
	case enums.JourneyStatusMealBreak:
		return "meal break"
	case enums.JourneyStatusWaitBreak:
		return "wait break"
	default:
		return "rest break"
	}
}
