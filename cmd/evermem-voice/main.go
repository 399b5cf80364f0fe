// Command evermem-voice runs an interactive voice assistant session in the
// terminal. Utterances are typed (or piped) line by line; replies are
// printed, and the synthesized audio can be written to a directory for
// playback.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evermem/evermem-go/pkg/companion"
	"github.com/evermem/evermem-go/pkg/conversation"
	"github.com/evermem/evermem-go/pkg/core"
	"github.com/evermem/evermem-go/pkg/voice"
)

var version = "dev"

func main() {
	var configPath string
	var profileID string
	var audioOut string

	rootCmd := &cobra.Command{
		Use:   "evermem-voice",
		Short: "Interactive voice assistant session for a profile",
		Long: `evermem-voice drives a spoken conversation with a persona profile.

Each input line is treated as one utterance and routed through the
conversation engine with the voice source tag. The session ends on an
exit phrase or a negative answer to the follow-up question.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileID == "" {
				return fmt.Errorf("--profile is required")
			}

			var cfg *core.Config
			var err error
			if configPath != "" {
				cfg, err = core.LoadConfigFromJSON(configPath)
			} else {
				cfg, err = core.LoadConfigFromEnv()
			}
			if err != nil {
				return err
			}

			client, err := companion.NewClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			if !client.VoiceEnabled() {
				return fmt.Errorf("speech provider not configured (set SPEECH_PROVIDER)")
			}

			return runSession(cmd, client, profileID, audioOut)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a JSON configuration file")
	rootCmd.Flags().StringVar(&profileID, "profile", "", "profile ID to talk to")
	rootCmd.Flags().StringVar(&audioOut, "audio-out", "", "directory to write synthesized replies as WAV files")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("evermem-voice %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runSession(cmd *cobra.Command, client *companion.Client, profileID, audioOut string) error {
	session := voice.NewSession(client.Recognizer(), client.Synthesizer(), client.Engine(), profileID)
	ctx := cmd.Context()

	fmt.Printf("Talking to %s. Say \"goodbye\" to end the session.\n", profileID)

	scanner := bufio.NewScanner(os.Stdin)
	turn := 0
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		utterance := scanner.Text()
		if utterance == "" {
			fmt.Println(voice.NoSpeechPrompt)
			continue
		}

		exchange, err := session.HandleUtterance(ctx, utterance)
		if err != nil {
			return err
		}
		fmt.Println(exchange.ReplyText)

		if audioOut != "" && len(exchange.Audio) > 0 {
			turn++
			path := filepath.Join(audioOut, fmt.Sprintf("reply_%03d.wav", turn))
			if err := os.WriteFile(path, exchange.Audio, 0o644); err != nil {
				log.Warnf("write audio: %v", err)
			}
		}

		if exchange.Ended {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	fmt.Println(conversation.FarewellMessage)
	return nil
}
