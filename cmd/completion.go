package cmd

import (
	"fmt"
	"strings"

	"github.com/nibzard/todo-go/internal/exitcode"
)

// commandNames are offered by shell completion.
var commandNames = []string{
	"list", "ls", "add", "done", "toggle", "rm", "delete", "edit",
	"export", "tui", "doctor", "config", "logs", "completion", "version", "help",
}

// completionCommand prints a completion script for the named shell.
func (a *app) completionCommand(args []string) error {
	if len(args) != 1 {
		return exitcode.Userf("completion: want one shell (bash, zsh, fish, powershell)")
	}

	cmds := strings.Join(commandNames, " ")
	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Fprintf(a.stdout, bashCompletion, cmds)
	case "zsh":
		fmt.Fprintf(a.stdout, zshCompletion, cmds)
	case "fish":
		fmt.Fprintf(a.stdout, fishCompletion, cmds)
	case "powershell", "pwsh":
		fmt.Fprintf(a.stdout, powershellCompletion, strings.Join(commandNames, "','"))
	default:
		return exitcode.Userf("completion: unsupported shell %q", args[0])
	}
	return nil
}

const bashCompletion = `# todo bash completion
_todo() {
    local cur="${COMP_WORDS[COMP_CWORD]}"
    if [ "$COMP_CWORD" -eq 1 ]; then
        COMPREPLY=($(compgen -W "%s" -- "$cur"))
        return
    fi
    case "${COMP_WORDS[1]}" in
        export) COMPREPLY=($(compgen -W "--format --out json csv pdf text" -- "$cur")) ;;
        list|ls) COMPREPLY=($(compgen -W "--all --open --done" -- "$cur")) ;;
        completion) COMPREPLY=($(compgen -W "bash zsh fish powershell" -- "$cur")) ;;
        config) COMPREPLY=($(compgen -W "example" -- "$cur")) ;;
    esac
}
complete -F _todo todo
`

const zshCompletion = `#compdef todo
# todo zsh completion
_todo() {
    local -a commands
    commands=(%s)
    if (( CURRENT == 2 )); then
        compadd -a commands
        return
    fi
    case "$words[2]" in
        export) compadd -- --format --out json csv pdf text ;;
        list|ls) compadd -- --all --open --done ;;
        completion) compadd bash zsh fish powershell ;;
        config) compadd example ;;
    esac
}
compdef _todo todo
`

const fishCompletion = `# todo fish completion
complete -c todo -f
complete -c todo -n '__fish_use_subcommand' -a '%s'
complete -c todo -n '__fish_seen_subcommand_from list ls' -l all -l open -l done
complete -c todo -n '__fish_seen_subcommand_from export' -l format -a 'json csv pdf text'
complete -c todo -n '__fish_seen_subcommand_from export' -l out -r -F
complete -c todo -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish powershell'
`

const powershellCompletion = `# todo PowerShell completion
Register-ArgumentCompleter -Native -CommandName todo -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)
    @('%s') | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`
