/*
Package tui implements the interactive shell for taskdeck.

# Architecture

The shell follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: Maintains all application state
  - Update: Processes messages and returns commands
  - View: Renders the current state to the terminal

# Key Components

  - model.go: Core state and initialization, defines the Model struct
  - screens.go: One screen per route target (menu, list, detail, form)
  - keys.go: Keyboard input handling per mode
  - render.go: View rendering logic for the main interface
  - actions.go: Navigation and gateway calls

# Navigation

Every location goes through router.Navigator. The resolved state's target picks
the screen from a router.Registry, so the address bar, list selection, back and
forward all behave the same way. A location that matches no route shows the
main view and a notice in the status bar.

The navigator's history is written to the session file on every change and
replayed on the next start when it was recorded against the same backend.

# Threading Model

The shell runs in Bubble Tea's event loop. Gateway calls run as tea.Cmd
functions and report back through messages carrying the navigation sequence
number they were issued under; results for a screen the user has already left
are dropped.
*/
package tui
