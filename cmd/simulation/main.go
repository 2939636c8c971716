package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	userID  string
	client  = &http.Client{Timeout: 60 * time.Second}
)

type envelope struct {
	Response       string `json:"response"`
	Type           string `json:"type"`
	Mode           string `json:"mode"`
	CurrentContext *struct {
		APIURL string `json:"apiUrl"`
	} `json:"currentContext"`
	Sources []struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Score  int    `json:"score"`
	} `json:"sources"`
	Suggestion string `json:"suggestion"`
}

type apiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// scenario walks through both modes against the public demo API.
var scenario = []string{
	"Bonjour",
	"Explore l'API https://jsonplaceholder.typicode.com",
	"Quels endpoints sont disponibles ?",
	"Appelle l'endpoint 1",
	"Ajoute cette API aux favoris",
	"Mes favoris",
	"Mon historique",
	"Quitte le mode API",
	"Quels sont les thèmes abordés dans le corpus ?",
}

var rootCmd = &cobra.Command{
	Use:   "simulation",
	Short: "Conversation client for the RAG / API explorer backend",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation (type /exit to leave)",
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Cyan("=== Conversation as %s (%s) ===", userID, baseURL)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(color.New(color.Bold).Sprint("> "))
			if !scanner.Scan() {
				return scanner.Err()
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "/exit" {
				return nil
			}
			turn(text)
		}
	},
}

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Run the built-in scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Cyan("🚀 Running scenario as %s", userID)
		for _, text := range scenario {
			color.Yellow("\nUSER: %s", text)
			turn(text)
			time.Sleep(500 * time.Millisecond)
		}
		return nil
	},
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the current session context",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := request(http.MethodGet, "/chat/v1/context/"+userID, nil)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Leave API mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := request(http.MethodDelete, "/chat/v1/context/"+userID, nil)
		if err != nil {
			return err
		}
		color.Green("%s", body)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:3000/api", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "simulation", "user id sent with every message")
	rootCmd.AddCommand(chatCmd, scriptCmd, contextCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func turn(text string) {
	start := time.Now()
	reply, err := send(text)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}
	printEnvelope(reply, elapsed)
}

func send(text string) (*envelope, error) {
	payload, _ := json.Marshal(map[string]string{"message": text, "user_id": userID})
	body, err := request(http.MethodPost, "/chat/v1/message", payload)
	if err != nil {
		return nil, err
	}

	var res apiResponse[envelope]
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func request(method, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func printEnvelope(e *envelope, elapsed time.Duration) {
	header := color.New(color.FgHiBlack).Sprintf("[%s | mode=%s | %v]", e.Type, e.Mode, elapsed)
	if e.CurrentContext != nil {
		header += color.New(color.FgHiBlack).Sprintf(" %s", e.CurrentContext.APIURL)
	}
	fmt.Println(header)

	if e.Type == "error" {
		color.Red("%s", e.Response)
	} else {
		color.Green("%s", e.Response)
	}

	for _, s := range e.Sources {
		color.Magenta("  📚 %s (%s) %d%%", s.Title, s.Author, s.Score)
	}
	if e.Suggestion != "" {
		color.Yellow("  💡 suggestion: %s", e.Suggestion)
	}
}
