/*
Package keybinds provides customizable keyboard bindings for the shell.

# Contexts

Every screen of the shell has a context. Screen contexts (menu, list,
detail, form) fall back to the global context, so a key that a screen
does not bind reaches the global actions (quit, back, forward, address
bar). Text entry contexts (text_input, editor, confirm) have no parent:
keys they do not bind are typed into the input.

# Configuration File Format

Bindings are read from keybinds.json in the config directory. Each
section maps an action to a comma-separated list of keys. The listed keys
replace the defaults of that action in that section; an empty list
unbinds it.

	{
	  "version": "1.0",
	  "global": {
	    "back": "h,[",
	    "forward": "l,]"
	  },
	  "list": {
	    "delete": "x",
	    "filter": "/,f"
	  },
	  "editor": {
	    "save": "ctrl+s,ctrl+w"
	  }
	}

Run "taskdeck keybinds --init" to write the effective bindings to the
file as a starting point.

# Validation

Unknown actions, empty keys and a key given to two actions of the same
section make the file invalid; the shell refuses to start until it is
fixed. Rebinding ctrl+c and shadowing a global key from a screen context
are reported as warnings.
*/
package keybinds
