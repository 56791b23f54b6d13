package main

import "fmt"

/*
	Notes on -D parsing:

	# filecheck -DNAME=VALUE ...       ok, binds NAME to VALUE
	# filecheck -D NAME=VALUE ...      ok, pflag splits the shorthand form too
	# filecheck -DNAME ...             error: missing '='
	# filecheck -D=VALUE ...           error: missing '=' (pflag drops the '=' after a shorthand)
	# filecheck -D =VALUE ...          error: empty name
	# filecheck -DA=B=C ...            ok, VALUE is "B=C" (only the first '=' splits)
*/

// parseDefine splits a -D<NAME=VALUE> token into its name and value.
func parseDefine(token string) (name, value string, err error) {
	for i := 0; i < len(token); i++ {
		if token[i] == '=' {
			name, value = token[:i], token[i+1:]
			if name == "" {
				return "", "", fmt.Errorf("empty variable name")
			}
			return name, value, nil
		}
	}
	return "", "", fmt.Errorf("missing '=' in -D%s", token)
}
