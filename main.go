package main

import "github.com/denysvitali/share-viewer/cmd"

func main() {
	cmd.Execute()
}
