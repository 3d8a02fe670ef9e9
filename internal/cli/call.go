package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/rohan4324/Furever-App-sub000/internal/chat"
	"github.com/rohan4324/Furever-App-sub000/internal/config"
	"github.com/rohan4324/Furever-App-sub000/internal/logging"
	"github.com/rohan4324/Furever-App-sub000/internal/media"
	"github.com/rohan4324/Furever-App-sub000/internal/rtc"
	"github.com/rohan4324/Furever-App-sub000/internal/session"
	"github.com/rohan4324/Furever-App-sub000/internal/signalclient"
	"github.com/rohan4324/Furever-App-sub000/internal/ui"
)

const registerTimeout = 10 * time.Second

var (
	flagRole     string
	flagName     string
	flagDomain   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
)

var callCmd = &cobra.Command{
	Use:   "call <appointment-id>",
	Short: "Join the consultation for an appointment",
	Long: `Join the consultation room for an appointment.

The booking flow assigns each appointment exactly one initiator and one
receiver; pass the role you were given. Two initiators (or two receivers)
can never complete negotiation.

Examples:
  consult call appt-1042 --role initiator --name "Dr. Reyes"
  consult call appt-1042 --role receiver`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(args[0])
	},
}

func init() {
	callCmd.Flags().StringVar(&flagRole, "role", "", "negotiation role: initiator or receiver (required)")
	callCmd.Flags().StringVar(&flagName, "name", "participant", "display name on in-call notes")
	callCmd.Flags().StringVar(&flagDomain, "domain", "", "signaling hub domain")
	callCmd.Flags().StringVar(&flagSTUN, "stun", "", "STUN server URL")
	callCmd.Flags().StringVar(&flagTURN, "turn", "", "TURN server host")
	callCmd.Flags().StringVar(&flagTURNUser, "turn-user", "", "TURN username")
	callCmd.Flags().StringVar(&flagTURNPass, "turn-pass", "", "TURN password")
	callCmd.MarkFlagRequired("role")

	rootCmd.AddCommand(callCmd)
}

func parseRole(s string) (session.Role, error) {
	switch s {
	case "initiator":
		return session.RoleInitiator, nil
	case "receiver":
		return session.RoleReceiver, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be initiator or receiver", s)
	}
}

func runCall(roomID string) error {
	role, err := parseRole(flagRole)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.Options{
		Domain:     flagDomain,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewWithDefault(zapcore.ErrorLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := signalclient.NewClient(cfg.WebSocketURL)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect to hub: %w", err)
	}
	defer client.Close()

	transport := signalclient.NewTransport(client)

	regCtx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()
	participantID, err := transport.WaitRegistered(regCtx)
	if err != nil {
		return fmt.Errorf("register with hub: %w", err)
	}
	ui.PrintInfo(fmt.Sprintf("registered as %s", participantID))

	factory := rtc.NewFactory(cfg, logger)
	factory.NoteReceiver = func(note chat.NotePayload) {
		fmt.Printf("\n%s %s: %s\n", ui.BoldStyle.Render("📝"), note.Author, note.Text)
	}
	factory.OnNotes = func(ch *chat.Channel) {
		ch.OnOpen(func() {
			ch.SendNote(flagName, "joined the consultation")
		})
	}

	sess := session.New(roomID, role, media.NewSynthetic(), factory, transport, logger)

	started := time.Now()
	sess.Start(ctx)

	if err := ui.RunCallUI(sess, roomID); err != nil {
		sess.EndCall()
		<-sess.Done()
		return fmt.Errorf("call ui: %w", err)
	}

	sess.EndCall()
	<-sess.Done()

	status := sess.Status()
	outcome := "completed"
	if status.State == session.StateFailed && status.Reason != nil {
		outcome = status.Reason.Error()
	}

	ui.RenderCallSummary("Consultation Summary", ui.CallSummary{
		Room:     roomID,
		Role:     string(role),
		Outcome:  outcome,
		Duration: time.Since(started).Round(time.Second).String(),
	})

	if status.State == session.StateFailed {
		return status.Reason
	}
	return nil
}
