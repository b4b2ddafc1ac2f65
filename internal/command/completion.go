// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/nutrictl/internal/meta"
)

const bashCompletionScript = `# bash completion for nutrictl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_nutrictl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "lookup suggest query cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local provider="--provider -p --api-version --base-url --data-dir --timeout --suggest-limit"
    local output="--color -c --output -o --titles -t --examples --tldr"
    local common="$output --attrs -a --filter -f --sort -s"

    case "$cmd" in
        lookup)
            local opts="$provider $output --pick"
            ;;
        suggest)
            local opts="$provider $output"
            ;;
        query)
            local opts="$provider $common --schema --limit -l"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "info path clean" -- "$cur") )
                return 0
            fi
            case "${COMP_WORDS[2]}" in
                info)  local opts="$provider $common" ;;
                clean) local opts="$provider --all" ;;
                *)     local opts="$provider" ;;
            esac
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$provider $output"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--data-dir" ]]; then
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
    fi

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _nutrictl nutrictl
`

const zshCompletionScript = `#compdef nutrictl

_nutrictl() {
  local -a cmds
  cmds=(
    'lookup:show the nutrition facts of a food'
    'suggest:list food names containing a fragment'
    'query:list stored foods'
    'cache:inspect and clean downloaded data'
    'completion:generate shell completion script'
  )

  local -a provider
  provider=(
  '(-p --provider)'{-p,--provider}'[nutrition data provider]:provider:(livsmedelsdatabasen)'
  '--api-version[registry snapshot]:version'
  '--base-url[registry API root]:url'
  '--data-dir[data directory]:directory:_directories'
  '--timeout[HTTP timeout]:duration'
  '--suggest-limit[maximum suggestions]:limit'
  )

  local -a output
  output=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--examples[show usage examples]'
  '--tldr[show tldr page]'
  )

  local -a common
  common=(
  $output
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'nutrictl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    lookup)
      _arguments -C $provider $output '--pick[choose among suggestions]' '*:food'
      ;;
    suggest)
      _arguments -C $provider $output '*:fragment'
      ;;
    query)
      _arguments -C $provider $common \
        '--schema[dump schema]' \
        '(-l --limit)'{-l,--limit}'[limit foods read]:limit' \
        '*:fragment'
      ;;
    cache)
      if (( CURRENT == 3 )); then
        _values 'cache command' info path clean
        return
      fi
      case $words[3] in
        info)  _arguments -C $provider $common ;;
        clean) _arguments -C $provider '--all[remove every artifact]' ;;
        *)     _arguments -C $provider ;;
      esac
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _nutrictl nutrictl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	shell := cmd.Args().First()
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(m.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(m.Stdout, zshCompletionScript)
	default:
		return fmt.Errorf("usage: nutrictl completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "nutrictl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
