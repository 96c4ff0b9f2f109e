package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/invite"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(availabilityCmd)
	rootCmd.AddCommand(freeSlotsCmd)
	rootCmd.AddCommand(bookingCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(tokenCmd)

	bookingCmd.AddCommand(bookingGetCmd, bookingCreateCmd, bookingConfirmCmd, bookingCancelCmd, bookingMineCmd)
	inviteCmd.AddCommand(inviteGetCmd, inviteListCmd, inviteJoinCmd, inviteResolveCmd)

	for _, cmd := range []*cobra.Command{availabilityCmd, freeSlotsCmd, bookingCreateCmd} {
		cmd.Flags().String("court", "", "Court ID")
		cmd.Flags().String("date", "", "Date (YYYY-MM-DD)")
		cmd.MarkFlagRequired("court")
		cmd.MarkFlagRequired("date")
	}
	for _, cmd := range []*cobra.Command{availabilityCmd, bookingCreateCmd} {
		cmd.Flags().String("start", "", "Start time (HH:MM)")
		cmd.Flags().String("end", "", "End time (HH:MM)")
		cmd.MarkFlagRequired("start")
		cmd.MarkFlagRequired("end")
	}
	bookingCreateCmd.Flags().Float64("amount", 0, "Total amount; computed from the court price when omitted")
	bookingCreateCmd.Flags().String("notes", "", "Notes for the venue")

	inviteListCmd.Flags().String("sport", "", "Only invites for this sport")
	inviteListCmd.Flags().String("date", "", "Only invites on this date")

	inviteJoinCmd.Flags().String("name", "", "Joiner name")
	inviteJoinCmd.Flags().String("contact", "", "Phone number or email of the joiner")
	inviteJoinCmd.Flags().Int("players", 1, "Number of players joining")
	inviteJoinCmd.MarkFlagRequired("name")

	tokenCmd.Flags().String("secret", "", "JWT secret of the server")
	tokenCmd.Flags().String("role", string(user.RoleUser), "Role claim (USER, OWNER or ADMIN)")
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("secret")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Check whether a court can be booked for a time range",
	RunE: func(cmd *cobra.Command, args []string) error {
		court, _ := cmd.Flags().GetString("court")
		q := url.Values{}
		for _, name := range []string{"date", "start", "end"} {
			v, _ := cmd.Flags().GetString(name)
			q.Set(name, v)
		}
		return performRequest(http.MethodGet, "/api/courts/"+url.PathEscape(court)+"/availability?"+q.Encode(), nil)
	},
}

var freeSlotsCmd = &cobra.Command{
	Use:   "free-slots",
	Short: "List the free slots of a court on a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		court, _ := cmd.Flags().GetString("court")
		date, _ := cmd.Flags().GetString("date")
		return performRequest(http.MethodGet, "/api/courts/"+url.PathEscape(court)+"/free-slots?date="+url.QueryEscape(date), nil)
	},
}

var bookingCmd = &cobra.Command{
	Use:   "booking",
	Short: "Create, inspect and transition bookings",
}

var bookingGetCmd = &cobra.Command{
	Use:   "get <booking-id>",
	Short: "Show a booking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/bookings/"+url.PathEscape(args[0]), nil)
	},
}

var bookingMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the bookings of the token holder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/me/bookings", nil)
	},
}

var bookingCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Request a booking",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := booking.CreateBookingInput{}
		in.CourtID, _ = cmd.Flags().GetString("court")
		in.Date, _ = cmd.Flags().GetString("date")
		in.StartTime, _ = cmd.Flags().GetString("start")
		in.EndTime, _ = cmd.Flags().GetString("end")
		in.Notes, _ = cmd.Flags().GetString("notes")
		if cmd.Flags().Changed("amount") {
			amount, _ := cmd.Flags().GetFloat64("amount")
			in.TotalAmount = &amount
		}
		return performRequest(http.MethodPost, "/api/bookings", in)
	},
}

func transitionCmd(use, short string, action booking.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <booking-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return performRequest(http.MethodPatch, "/api/bookings/"+url.PathEscape(args[0]), map[string]string{"action": string(action)})
		},
	}
}

var (
	bookingConfirmCmd = transitionCmd("confirm", "Confirm a pending booking", booking.StatusConfirmed)
	bookingCancelCmd  = transitionCmd("cancel", "Cancel a pending booking", booking.StatusCancelled)
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Browse invites and manage join requests",
}

var inviteGetCmd = &cobra.Command{
	Use:   "get <invite-id>",
	Short: "Show an invite with its places left",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/invites/"+url.PathEscape(args[0]), nil)
	},
}

var inviteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open invites",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if sport, _ := cmd.Flags().GetString("sport"); sport != "" {
			q.Set("sport", sport)
		}
		if date, _ := cmd.Flags().GetString("date"); date != "" {
			q.Set("date", date)
		}
		return performRequest(http.MethodGet, "/api/invites?"+q.Encode(), nil)
	},
}

var inviteJoinCmd = &cobra.Command{
	Use:   "join <invite-id>",
	Short: "Ask to join an invite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := invite.NewJoinRequest{}
		in.JoinerName, _ = cmd.Flags().GetString("name")
		in.Contact, _ = cmd.Flags().GetString("contact")
		in.PlayersCount, _ = cmd.Flags().GetInt("players")
		return performRequest(http.MethodPost, "/api/invites/"+url.PathEscape(args[0])+"/join-requests", in)
	},
}

var inviteResolveCmd = &cobra.Command{
	Use:       "resolve <request-id> <ACCEPTED|DECLINED>",
	Short:     "Accept or decline a join request",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(invite.StatusAccepted), string(invite.StatusDeclined)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPatch, "/api/join-requests/"+url.PathEscape(args[0]), map[string]string{"decision": args[1]})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign an API token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		role, _ := cmd.Flags().GetString("role")
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if !user.Role(role).Valid() {
			return fmt.Errorf("unknown role %q", role)
		}
		signed, err := auth.New(secret, nil).IssueToken(args[0], user.Role(role), email, ttl)
		if err != nil {
			return err
		}
		fmt.Println(signed)
		return nil
	},
}

func performRequest(method, endpoint string, payload any) error {
	target := host + endpoint
	fmt.Printf("Making request to %s %s\n", method, target)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
