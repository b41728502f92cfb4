// @title        Schadensbericht Portal API
// @version      1.0
// @description  Session-based access layer: login, logout, admin-only user provisioning and project export.
// @BasePath     /
package main

import "github.com/schadensbericht/portal/cmd"

func main() {
	cmd.Execute()
}
