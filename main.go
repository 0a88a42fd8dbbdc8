package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/stash/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--verbose") {
		cmd.Log.Verbose = true
		args = args[1:]
	}

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		runInit(ctx, args[1:])
	case "put":
		runPut(ctx, args[1:])
	case "get":
		runGet(ctx, args[1:])
	case "ls":
		runLs(ctx, args[1:])
	case "rm":
		runRm(ctx, args[1:])
	case "rename":
		runRename(ctx, args[1:])
	case "diff":
		runDiff(ctx, args[1:])
	case "status":
		runStatus(ctx, args[1:])
	case "reset-lockout":
		runResetLockout(ctx, args[1:])
	case "compact":
		runCompact(ctx, args[1:])
	case "keyring":
		runKeyring(ctx, args[1:])
	case "completion":
		runCompletion(ctx, args[1:])
	case "help", "-h", "--help":
		if len(args) <= 1 {
			printUsage()
			return
		}
		printCommandHelp(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runInit(_ context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Init()
}

func runPut(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	nameShort := fs.String("n", "", "Name for the record")
	nameLong := fs.String("name", "", "Name for the record")
	fileShort := fs.String("f", "", "Read secret data from file instead of stdin")
	fileLong := fs.String("file", "", "Read secret data from file instead of stdin")
	useKeyring := fs.Bool("keyring", false, "Save the passkey to the OS keyring")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	name := *nameLong
	if name == "" {
		name = *nameShort
	}
	file := *fileLong
	if file == "" {
		file = *fileShort
	}
	if name == "" && len(fs.Args()) > 0 {
		name = fs.Args()[0]
	}
	if name == "" {
		fmt.Fprintln(os.Stderr, "Usage: stash put [-f <file>] [--keyring] <name>")
		os.Exit(1)
	}

	cmd.Put(ctx, name, file, *useKeyring)
}

func runGet(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	outShort := fs.String("o", "", "Write plaintext to file instead of stdout")
	outLong := fs.String("out", "", "Write plaintext to file instead of stdout")
	keyShort := fs.Bool("k", false, "Use passkey from the OS keyring")
	keyLong := fs.Bool("keyring", false, "Use passkey from the OS keyring")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(fs.Args()) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stash get [-o <file>] [-k] <id|name>")
		os.Exit(1)
	}
	out := *outLong
	if out == "" {
		out = *outShort
	}

	cmd.Get(ctx, fs.Args()[0], out, *keyShort || *keyLong)
}

func runLs(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Ls(ctx)
}

func runRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(fs.Args()) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stash rm <id|name> [id|name...]")
		os.Exit(1)
	}

	cmd.Rm(ctx, fs.Args())
}

func runRename(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(fs.Args()) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: stash rename <id|name> <new-name>")
		os.Exit(1)
	}

	cmd.Rename(ctx, fs.Args()[0], fs.Args()[1])
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if len(fs.Args()) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: stash diff <id|name> <file>")
		os.Exit(1)
	}

	cmd.Diff(ctx, fs.Args()[0], fs.Args()[1])
}

func runStatus(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status(ctx)
}

func runResetLockout(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("reset-lockout", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.ResetLockout(ctx)
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Compact()
}

func runKeyring(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: stash keyring <save|forget|status> <id|name>")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave(ctx, args[1])
	case "forget":
		cmd.KeyringForget(ctx, args[1])
	case "status":
		cmd.KeyringStatus(ctx, args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring action: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stash completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("stash - Encrypted secret storage for the command line")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  stash [-v] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init           Create a .stash vault in current directory")
	fmt.Println("  put            Encrypt and store a secret")
	fmt.Println("  get            Decrypt and print a secret")
	fmt.Println("  ls             List stored records")
	fmt.Println("  rm             Remove records from the vault")
	fmt.Println("  rename         Rename a record")
	fmt.Println("  diff           Compare a record with a local file")
	fmt.Println("  status         Show comprehensive vault status")
	fmt.Println("  reset-lockout  Clear a failed-attempt lockout (requires master secret)")
	fmt.Println("  compact        Compact vault to reclaim disk space")
	fmt.Println("  keyring        Manage passkeys in the OS keyring")
	fmt.Println("  completion     Generate shell completions")
	fmt.Println("  help           Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  stash init                       # Create new vault")
	fmt.Println("  stash put api-token              # Store a secret read from stdin")
	fmt.Println("  stash get api-token              # Print the decrypted secret")
	fmt.Println("  stash status                     # Check vault status")
	fmt.Println()
	fmt.Println("Use 'stash help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("stash init")
		fmt.Println()
		fmt.Println("Creates a .stash vault file in the current directory.")
		fmt.Println("Optionally sets a master secret used to clear lockouts.")
		fmt.Println("The master secret is stored only as a SHA-256 digest in the")
		fmt.Println("config file, never in the vault itself.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  stash init                       # Create new vault")
	case "put":
		fmt.Println("stash put [-n <name>] [-f <file>] [--keyring] [<name>]")
		fmt.Println()
		fmt.Println("Encrypts and stores a secret in the vault.")
		fmt.Println("Reads the secret from stdin unless -f is given.")
		fmt.Println("Each record is sealed with its own random salt, so the same")
		fmt.Println("secret stored twice produces different ciphertext.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -n, --name      Name for the record")
		fmt.Println("  -f, --file      Read secret data from file")
		fmt.Println("  --keyring       Save the passkey to the OS keyring")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  stash put api-token              # Read secret from stdin")
		fmt.Println("  stash put -f id_rsa ssh-key      # Store a file's contents")
		fmt.Println("  echo -n s3cret | stash put db    # Pipe a secret in")
	case "get":
		fmt.Println("stash get [-o <file>] [-k] <id|name>")
		fmt.Println()
		fmt.Println("Decrypts and prints a secret.")
		fmt.Println("Prompts for the passkey unless it comes from the environment")
		fmt.Println("or the OS keyring. Three wrong passkeys in a row lock the")
		fmt.Println("vault for five minutes.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -o, --out       Write plaintext to file instead of stdout")
		fmt.Println("  -k, --keyring   Use passkey from the OS keyring")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  stash get api-token")
		fmt.Println("  stash get -o id_rsa ssh-key")
	case "ls":
		fmt.Println("stash ls")
		fmt.Println()
		fmt.Println("Lists stored records: id, name and creation time.")
		fmt.Println("Does not require a passkey; no plaintext is shown.")
	case "rm":
		fmt.Println("stash rm <id|name> [id|name...]")
		fmt.Println()
		fmt.Println("Removes records from the vault.")
		fmt.Println("Removing a record that does not exist is not an error.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  stash rm api-token")
		fmt.Println("  stash rm old-key older-key")
	case "rename":
		fmt.Println("stash rename <id|name> <new-name>")
		fmt.Println()
		fmt.Println("Renames a record. The encrypted payload is untouched.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  stash rename api-token github-token")
	case "diff":
		fmt.Println("stash diff <id|name> <file>")
		fmt.Println()
		fmt.Println("Compares a stored secret with a local file and prints a")
		fmt.Println("unified diff. Requires the passkey and counts as a retrieval")
		fmt.Println("for lockout purposes.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  stash diff ssh-key ~/.ssh/id_rsa")
	case "status":
		fmt.Println("stash status")
		fmt.Println()
		fmt.Println("Shows comprehensive vault status including:")
		fmt.Println("  - Record count and vault file size")
		fmt.Println("  - Encryption details")
		fmt.Println("  - Lockout state and remaining attempts")
		fmt.Println("  - Git tracking advice for the vault file")
		fmt.Println()
		fmt.Println("Does not require a passkey.")
	case "reset-lockout":
		fmt.Println("stash reset-lockout")
		fmt.Println()
		fmt.Println("Clears an active lockout and the failed-attempt counter.")
		fmt.Println("Requires the master secret configured at init time.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  stash reset-lockout")
	case "compact":
		fmt.Println("stash compact")
		fmt.Println()
		fmt.Println("Compacts the .stash database to reclaim unused disk space.")
		fmt.Println("Useful after removing many records.")
		fmt.Println()
		fmt.Println("Does not require a passkey.")
	case "keyring":
		fmt.Println("stash keyring <save|forget|status> <id|name>")
		fmt.Println()
		fmt.Println("Manages per-record passkeys in the OS keyring.")
		fmt.Println("  save     Verify and store the passkey for a record")
		fmt.Println("  forget   Remove the stored passkey")
		fmt.Println("  status   Check whether a passkey is stored")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  stash keyring save api-token")
		fmt.Println("  stash keyring forget api-token")
	case "completion":
		fmt.Println("stash completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(stash completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(stash completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  stash completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
