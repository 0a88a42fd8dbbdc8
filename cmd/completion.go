package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_stash() {
    local cur prev words cword
    _init_completion || return

    local commands="init put get ls rm rename diff status reset-lockout compact keyring completion help"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        put)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-n --name -f --file --keyring" -- "$cur"))
            else
                _filedir
            fi
            ;;
        get)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-o --out -k --keyring" -- "$cur"))
            fi
            ;;
        diff)
            _filedir
            ;;
        keyring)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "save forget status" -- "$cur"))
            fi
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}
complete -F _stash stash
`

const zshCompletion = `#compdef stash

_stash() {
    local -a commands
    commands=(
        'init:Create a new vault in the current directory'
        'put:Encrypt and store a secret'
        'get:Decrypt and print a secret'
        'ls:List stored records'
        'rm:Delete records'
        'rename:Rename a record'
        'diff:Compare a record with a local file'
        'status:Show vault status'
        'reset-lockout:Clear the lockout with the master secret'
        'compact:Reclaim unused space in the vault file'
        'keyring:Manage passkeys in the OS keyring'
        'completion:Output shell completion script'
        'help:Show help'
    )

    if (( CURRENT == 2 )); then
        _describe 'command' commands
        return
    fi

    case "$words[2]" in
        put|diff)
            _files
            ;;
        keyring)
            (( CURRENT == 3 )) && _values 'action' save forget status
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
    esac
}

_stash
`

const fishCompletion = `complete -c stash -f

complete -c stash -n '__fish_use_subcommand' -a init -d 'Create a new vault in the current directory'
complete -c stash -n '__fish_use_subcommand' -a put -d 'Encrypt and store a secret'
complete -c stash -n '__fish_use_subcommand' -a get -d 'Decrypt and print a secret'
complete -c stash -n '__fish_use_subcommand' -a ls -d 'List stored records'
complete -c stash -n '__fish_use_subcommand' -a rm -d 'Delete records'
complete -c stash -n '__fish_use_subcommand' -a rename -d 'Rename a record'
complete -c stash -n '__fish_use_subcommand' -a diff -d 'Compare a record with a local file'
complete -c stash -n '__fish_use_subcommand' -a status -d 'Show vault status'
complete -c stash -n '__fish_use_subcommand' -a reset-lockout -d 'Clear the lockout with the master secret'
complete -c stash -n '__fish_use_subcommand' -a compact -d 'Reclaim unused space in the vault file'
complete -c stash -n '__fish_use_subcommand' -a keyring -d 'Manage passkeys in the OS keyring'
complete -c stash -n '__fish_use_subcommand' -a completion -d 'Output shell completion script'

complete -c stash -n '__fish_seen_subcommand_from put' -s n -l name -d 'Record name'
complete -c stash -n '__fish_seen_subcommand_from put' -s f -l file -d 'Read data from file'
complete -c stash -n '__fish_seen_subcommand_from put' -l keyring -d 'Save passkey to OS keyring'
complete -c stash -n '__fish_seen_subcommand_from get' -s o -l out -d 'Write plaintext to file'
complete -c stash -n '__fish_seen_subcommand_from get' -s k -l keyring -d 'Use passkey from OS keyring'
complete -c stash -n '__fish_seen_subcommand_from keyring' -a 'save forget status'
complete -c stash -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
`
