package logbuf

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

func (lb *LogBuffer) addHttpHandlers() {
	if lb.options.HttpServeMux == nil {
		return
	}
	lb.options.HttpServeMux.HandleFunc("/logs", lb.httpListHandler)
	lb.options.HttpServeMux.HandleFunc("/logs/dump", lb.httpDumpHandler)
}

func (lb *LogBuffer) dumpFile(writer io.Writer, filename string) error {
	file, err := os.Open(filepath.Join(lb.options.Directory, filename))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(writer, bufio.NewReader(file))
	return err
}

func (lb *LogBuffer) httpDumpHandler(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("name")
	if name == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_, recentFirst := req.URL.Query()["recentFirst"]
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer := bufio.NewWriter(w)
	defer writer.Flush()
	if name == "latest" {
		lb.dump(writer, "", "\n", recentFirst)
		return
	}
	lb.flush()
	err := lb.dumpFile(writer, filepath.Base(filepath.Clean(name)))
	if err != nil && os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		fmt.Fprintln(writer, err)
	}
}

func (lb *LogBuffer) httpListHandler(w http.ResponseWriter, req *http.Request) {
	writer := bufio.NewWriter(w)
	defer writer.Flush()
	fmt.Fprintln(writer, "<body>")
	if lb.options.Directory != "" {
		names, err := lb.list()
		if err != nil {
			fmt.Fprintln(writer, err)
			return
		}
		for _, name := range names {
			fmt.Fprintf(writer, "<a href=\"logs/dump?name=%s\">%s</a><br>\n",
				name, name)
		}
	}
	fmt.Fprintln(writer, "<a href=\"logs/dump?name=latest\">current</a><br>")
	fmt.Fprintln(writer, "<p>")
	lb.writeHtml(writer)
	fmt.Fprintln(writer, "</body>")
}

func (lb *LogBuffer) writeHtml(writer io.Writer) {
	fmt.Fprintln(writer, "Logs:<br>")
	fmt.Fprintln(writer, "<pre>")
	for _, line := range lb.snapshot() {
		fmt.Fprintln(writer, html.EscapeString(line))
	}
	fmt.Fprintln(writer, "</pre>")
}
