package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nyumba-app/nyumba/internal/chat"
	"github.com/nyumba-app/nyumba/internal/dashboard"
	"github.com/nyumba-app/nyumba/internal/payment"
	"github.com/nyumba-app/nyumba/internal/property"
	"github.com/nyumba-app/nyumba/internal/user"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single property in text format.
func printPropertySummary(p *property.Property) {
	fmt.Printf("Property #%d\n", p.ID)
	fmt.Printf("  Name:     %s\n", p.Name)
	fmt.Printf("  Address:  %s\n", p.Address)
	fmt.Printf("  Rent:     KES %s\n", formatKES(p.RentAmount))
	if p.Description != "" {
		fmt.Printf("  About:    %s\n", p.Description)
	}
	if p.ImageURL != "" {
		fmt.Printf("  Image:    %s\n", p.ImageURL)
	}
	fmt.Printf("  Added:    %s\n", p.CreatedAt.Format("2 Jan 2006"))
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(props []*property.Property) error {
	if len(props) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tADDRESS\tRENT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-------\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\tKES %s\n",
			p.ID, truncate(p.Name, 24), truncate(p.Address, 40), formatKES(p.RentAmount)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d properties\n", len(props))
	return nil
}

// printPaymentTable prints payments as a formatted table.
func printPaymentTable(payments []*payment.Payment) error {
	if len(payments) == 0 {
		fmt.Println("No payments found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tTENANT\tPROPERTY\tAMOUNT\tSTATUS\tRECEIPT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t------\t--------\t------\t------\t-------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range payments {
		tenant := p.TenantName
		if tenant == "" {
			tenant = "-"
		}
		prop := p.PropertyName
		if prop == "" {
			prop = "-"
		}
		receipt := p.Receipt
		if receipt == "" {
			receipt = "-"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\tKES %s\t%s\t%s\n",
			p.ID, p.PaymentDate.Format("2006-01-02"), truncate(tenant, 24),
			truncate(prop, 24), formatKES(p.Amount), p.Status, receipt); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	return nil
}

// printTenantTable prints tenants as a formatted table.
func printTenantTable(tenants []*user.User) error {
	if len(tenants) == 0 {
		fmt.Println("No tenants registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tNAME\tEMAIL\tHOUSE\tPHONE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-----\t-----\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, t := range tenants {
		house := t.HouseNumber
		if house == "" {
			house = "-"
		}
		phone := t.PhoneNumber
		if phone == "" {
			phone = "-"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			t.ID, truncate(t.FullName(), 30), t.Email, house, phone); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	return nil
}

// printConversationList prints conversations in text format.
func printConversationList(convos []*chat.Conversation) {
	if len(convos) == 0 {
		fmt.Println("No conversations yet.")
		return
	}

	for _, c := range convos {
		unread := ""
		if c.Unread > 0 {
			unread = fmt.Sprintf(" (%d unread)", c.Unread)
		}
		fmt.Printf("Property #%d %s%s\n", c.PropertyID, c.PropertyName, unread)
		fmt.Printf("  [%s] %s: %s\n\n",
			c.LastAt.Format("2 Jan 15:04"), c.LastSender, truncate(c.LastMessage, 60))
	}
}

// printMessages prints a chat thread in text format, oldest first.
func printMessages(messages []*chat.Message) {
	if len(messages) == 0 {
		fmt.Println("No messages yet.")
		return
	}

	for _, m := range messages {
		sender := m.SenderName
		if sender == "" {
			sender = fmt.Sprintf("user #%d", m.SenderID)
		}
		fmt.Printf("[%s] %s\n  %s\n\n", m.Timestamp.Format("2 Jan 15:04"), sender, m.Content)
	}
}

// printLandlordDashboard prints the landlord summary in text format.
func printLandlordDashboard(s *dashboard.LandlordSummary) error {
	fmt.Printf("Tenants:     %d / %d\n", s.TenantCount, s.MaxTenants)
	fmt.Printf("Properties:  %d\n", s.PropertyCount)
	fmt.Printf("This month:  KES %s collected\n\n", formatKES(s.MonthlyRevenue))
	return printPaymentTable(s.Payments)
}

// printTenantDashboard prints the tenant summary in text format.
func printTenantDashboard(s *dashboard.TenantSummary) error {
	fmt.Printf("Rent:        KES %s\n", formatKES(s.RentAmount))
	fmt.Printf("Due:         %s\n", s.DueDate.Format("2 Jan 2006"))
	if s.DaysOverdue > 0 {
		fmt.Printf("Overdue:     %d days\n", s.DaysOverdue)
	}
	if s.LastStatus != "" {
		fmt.Printf("Last status: %s\n", s.LastStatus)
	}
	fmt.Println()
	return printPaymentTable(s.Payments)
}

// formatKES formats a shilling amount with thousands separators.
// Amounts are whole shillings in practice, so cents are dropped.
func formatKES(amount float64) string {
	s := fmt.Sprintf("%.0f", amount)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		parts = append([]string{s}, parts...)
		s = strings.Join(parts, ",")
	}

	if neg {
		s = "-" + s
	}
	return s
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
