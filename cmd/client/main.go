// Package main runs the interactive VeriFlow client: an identity
// verification wizard in the terminal, from document upload to a
// created account.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/VeriFlow/internal/client/api"
	"github.com/atinyakov/VeriFlow/internal/client/camera"
	"github.com/atinyakov/VeriFlow/internal/client/session"
	"github.com/atinyakov/VeriFlow/internal/client/wizard"
	"github.com/atinyakov/VeriFlow/internal/config"
	"github.com/atinyakov/VeriFlow/internal/logger"
	"github.com/atinyakov/VeriFlow/internal/models"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

var documentMIMEs = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// prompt reads one trimmed line from the scanner after printing a label.
func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func confirm(scanner *bufio.Scanner, label string) bool {
	answer := strings.ToLower(prompt(scanner, label+" [y/N]: "))
	return answer == "y" || answer == "yes"
}

// readDocument loads a document file from disk, inferring its MIME type
// from the extension.
func readDocument(path string) (models.DocumentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentFile{}, err
	}
	mime, ok := documentMIMEs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mime = "application/octet-stream"
	}
	return models.DocumentFile{Name: filepath.Base(path), MIME: mime, Data: data}, nil
}

// documentStep prompts for the front (required) and back (optional)
// document files until a valid bundle is selected.
func documentStep(scanner *bufio.Scanner, w *wizard.Wizard) {
	for w.Step() == wizard.StepDocument {
		frontPath := prompt(scanner, "Path to document front (JPG, PNG or PDF): ")
		if frontPath == "" {
			continue
		}
		front, err := readDocument(frontPath)
		if err != nil {
			fmt.Println("Could not read file:", err)
			continue
		}

		bundle := models.DocumentBundle{Front: front}
		if backPath := prompt(scanner, "Path to document back (optional, Enter to skip): "); backPath != "" {
			back, err := readDocument(backPath)
			if err != nil {
				fmt.Println("Could not read file:", err)
				continue
			}
			bundle.Back = &back
		}

		if err := w.SelectDocuments(bundle); err != nil {
			fmt.Println(w.ErrMessage())
		}
	}
}

// selfieStep captures a selfie through the camera session and submits
// it together with the selected documents. imagePath is the still image
// acting as the camera device; when empty the user is prompted.
func selfieStep(ctx context.Context, scanner *bufio.Scanner, w *wizard.Wizard, imagePath string, log *zap.Logger) {
	for w.Step() == wizard.StepSelfie {
		path := imagePath
		if path == "" {
			path = prompt(scanner, "Path to a selfie image (used as the camera): ")
			if path == "" {
				continue
			}
		}

		sess := camera.NewSession(&camera.FileDevice{Path: path}, &camera.NopSurface{}, log)
		if err := sess.Start(ctx); err != nil {
			fmt.Println(camera.Describe(err))
			imagePath = ""
			continue
		}
		if msg := sess.Advisory(); msg != "" {
			fmt.Println(msg)
		}

		selfie, err := camera.Capture(sess)
		sess.Stop()
		if err != nil {
			fmt.Println("Capture failed:", err)
			imagePath = ""
			continue
		}

		fmt.Println("Submitting documents and selfie...")
		if err := w.SubmitSelfie(ctx, selfie); err != nil {
			fmt.Println(w.ErrMessage())
			if w.Step() == wizard.StepSelfie && !confirm(scanner, "Retry submission?") {
				os.Exit(1)
			}
		}
	}
}

// statusStep polls the backend until the verification reaches an
// outcome or the user gives up waiting.
func statusStep(ctx context.Context, scanner *bufio.Scanner, w *wizard.Wizard, store *session.Store) {
	job, ok := w.Job()
	if !ok {
		return
	}
	if err := store.Save(session.State{VerificationID: job.ID, Status: job.Status}); err != nil {
		fmt.Println("Warning: could not save session:", err)
	}

	for w.Step() == wizard.StepStatus {
		p, err := w.StartPolling(ctx)
		if err != nil {
			return
		}
		fmt.Println(wizard.StatusMessage(p.Status()))
		<-p.Done()

		if msg := p.Message(); msg != "" {
			fmt.Println(msg)
		}
		if w.Step() == wizard.StepStatus {
			// The attempt budget ran out without an outcome.
			if !confirm(scanner, "Keep waiting for the result?") {
				fmt.Println("You can resume this verification later.")
				os.Exit(0)
			}
		}
	}

	switch w.Step() {
	case wizard.StepAccount:
		fmt.Println(wizard.StatusMessage(models.StatusApproved))
	case wizard.StepDocument:
		fmt.Println(w.ErrMessage())
		_ = store.Clear()
	}
}

// accountStep collects credentials and creates the account.
func accountStep(ctx context.Context, scanner *bufio.Scanner, w *wizard.Wizard) {
	for w.Step() == wizard.StepAccount {
		form := wizard.AccountForm{
			Email:           prompt(scanner, "Email: "),
			Password:        prompt(scanner, "Password (min 8 characters): "),
			ConfirmPassword: prompt(scanner, "Confirm password: "),
		}
		if err := w.CompleteAccount(ctx, form); err != nil {
			fmt.Println(w.ErrMessage())
		}
	}
}

func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")

	options := config.Parse()

	if showVer {
		fmt.Printf("VeriFlow Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	zapLogger := log.Log

	backend := api.New(options.APIBaseURL, zapLogger)
	w := wizard.New(wizard.Config{APIBaseURL: options.APIBaseURL}, backend, zapLogger)
	store := session.NewStore(options.SessionFile)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	// Offer to resume an interrupted verification.
	if state, ok, err := store.Load(); err == nil && ok && state.Resumable() {
		if confirm(scanner, fmt.Sprintf("Resume verification %s?", state.VerificationID)) {
			if err := w.Resume(models.VerificationJob{ID: state.VerificationID, Status: state.Status}); err != nil {
				fmt.Println("Could not resume, starting over.")
			}
		} else {
			_ = store.Clear()
		}
	}

	for {
		switch w.Step() {
		case wizard.StepDocument:
			documentStep(scanner, w)
		case wizard.StepSelfie:
			selfieStep(ctx, scanner, w, options.CameraImage, zapLogger)
		case wizard.StepStatus:
			statusStep(ctx, scanner, w, store)
		case wizard.StepAccount:
			accountStep(ctx, scanner, w)
		case wizard.StepFinished:
			_ = store.Clear()
			if acc, ok := w.Account(); ok {
				fmt.Printf("Account created for %s. You're all set!\n", acc.Email)
			}
			return
		}
	}
}
