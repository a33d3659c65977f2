package httpapi

import "net/http"

// Version is stamped by the build; /version reports it.
var Version = "dev"

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	WriteText(w, http.StatusOK, "subweave\n\nGET /sub?target=clash&url=<subscription>\n")
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	WriteText(w, http.StatusOK, "ok\n")
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteText(w, http.StatusOK, Version+"\n")
}
