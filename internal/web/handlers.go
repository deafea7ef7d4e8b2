package web

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa/internal/adapter/fs"
	"docqa/internal/adapter/webloader"
	"docqa/internal/domain"
	"docqa/internal/usecase"
)

type pageData struct {
	Title             string
	Question          string
	Expertise         string
	Backend           string
	Backends          []string
	UsePreviousAnswer bool
	Answer            template.HTML
	References        []domain.Reference
	Usage             *domain.Usage
	History           []domain.HistoryEntry
	Notice            string
	Warning           string
}

func (s *Server) indexPage(c *gin.Context) {
	sess := s.sessions.Get(c)
	sess.Lock()
	defer sess.Unlock()

	c.HTML(http.StatusOK, "index.html", s.pageData(sess, pageData{}))
}

func (s *Server) pageData(sess *Session, d pageData) pageData {
	d.Title = s.cfg.Server.PageTitle
	if d.Expertise == "" {
		d.Expertise = string(domain.ExpertiseBeginner)
	}
	if d.Backend == "" {
		d.Backend = s.cfg.Synthesis.Backend
	}
	d.Backends = s.backendNames()
	d.UsePreviousAnswer = sess.UsePreviousAnswer()
	d.History = sess.History()
	return d
}

func (s *Server) backendNames() []string {
	names := make([]string, 0, len(s.backends))
	for name := range s.backends {
		names = append(names, name)
	}
	// Stable order for the selector: config default first.
	for i, n := range names {
		if n == s.cfg.Synthesis.Backend && i != 0 {
			names[0], names[i] = names[i], names[0]
		}
	}
	return names
}

// askForm handles the question box. A URL ingests the page instead of
// querying; anything else runs the answer pipeline.
func (s *Server) askForm(c *gin.Context) {
	sess := s.sessions.Get(c)
	sess.Lock()
	defer sess.Unlock()

	question := strings.TrimSpace(c.PostForm("question"))
	expertise := domain.ExpertiseLevel(c.PostForm("expertise"))
	backendName := c.PostForm("backend")
	sess.SetUsePreviousAnswer(c.PostForm("use_previous") == "on")

	d := pageData{Question: question, Expertise: string(expertise), Backend: backendName}

	if question == "" {
		c.HTML(http.StatusOK, "index.html", s.pageData(sess, d))
		return
	}
	if !expertise.Valid() {
		expertise = domain.ExpertiseBeginner
		d.Expertise = string(expertise)
	}

	if webloader.IsURL(question) {
		s.ingestURL(c, sess, d, question)
		return
	}

	backend, err := s.backend(backendName)
	if err != nil {
		d.Warning = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", s.pageData(sess, d))
		return
	}

	prior := sess.PreviousAnswer()
	answerUC := usecase.NewAnswerUseCase(s.retriever, backend, s.cfg.Retrieve.TopK)

	result, err := answerUC.Answer(c.Request.Context(), question, expertise, prior)
	if err != nil {
		d.Warning = s.describeError(err)
		s.chat.LogFailure(question, err)
		c.HTML(http.StatusOK, "index.html", s.pageData(sess, d))
		return
	}

	sess.RecordAnswer(question, result)
	s.chat.LogInteraction(question, usecase.EffectiveQuestion(question, prior), result, sess.History())

	d.Answer = renderMarkdown(result.Text)
	d.References = result.References
	d.Usage = result.Usage
	d.Question = "" // clear the box after a successful answer
	c.HTML(http.StatusOK, "index.html", s.pageData(sess, d))
}

func (s *Server) ingestURL(c *gin.Context, sess *Session, d pageData, pageURL string) {
	page, err := s.loader.Load(c.Request.Context(), pageURL)
	if err != nil {
		d.Warning = "Could not load web content: " + err.Error()
		c.HTML(http.StatusOK, "index.html", s.pageData(sess, d))
		return
	}

	doc, chunks, err := s.ingest.IngestContent(c.Request.Context(), page.Title, page.URL, page.Text)
	if err != nil {
		d.Warning = "Could not index web content: " + err.Error()
		c.HTML(http.StatusOK, "index.html", s.pageData(sess, d))
		return
	}

	s.log.Info("ingested web page",
		slog.String("url", page.URL),
		slog.String("doc_id", doc.ID),
		slog.Int("chunks", chunks),
	)
	d.Notice = "Web content loaded into the knowledge base: " + page.Title
	d.Question = ""
	c.HTML(http.StatusOK, "index.html", s.pageData(sess, d))
}

func (s *Server) describeError(err error) string {
	var unavailable *domain.BackendUnavailableError
	var synth *domain.SynthesisError
	switch {
	case usecase.IsRetrievalUnavailable(err):
		return "No knowledge base available. Add a document before asking questions."
	case errors.As(err, &unavailable):
		return "The API key for the " + unavailable.Backend + " backend is not set."
	case errors.As(err, &synth):
		return "The " + synth.Backend + " backend failed to answer. Try again later."
	default:
		return err.Error()
	}
}

type askRequest struct {
	Question          string `json:"question" binding:"required"`
	Expertise         string `json:"expertise"`
	Backend           string `json:"backend"`
	UsePreviousAnswer bool   `json:"use_previous_answer"`
}

func (s *Server) askJSON(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expertise := domain.ExpertiseLevel(req.Expertise)
	if !expertise.Valid() {
		expertise = domain.ExpertiseBeginner
	}

	backend, err := s.backend(req.Backend)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := s.sessions.Get(c)
	sess.Lock()
	defer sess.Unlock()
	sess.SetUsePreviousAnswer(req.UsePreviousAnswer)
	prior := sess.PreviousAnswer()

	answerUC := usecase.NewAnswerUseCase(s.retriever, backend, s.cfg.Retrieve.TopK)
	result, err := answerUC.Answer(c.Request.Context(), req.Question, expertise, prior)
	if err != nil {
		s.chat.LogFailure(req.Question, err)
		status := http.StatusBadGateway
		if usecase.IsRetrievalUnavailable(err) {
			status = http.StatusServiceUnavailable
		}
		var unavailable *domain.BackendUnavailableError
		if errors.As(err, &unavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": s.describeError(err)})
		return
	}

	sess.RecordAnswer(req.Question, result)
	s.chat.LogInteraction(req.Question, usecase.EffectiveQuestion(req.Question, prior), result, sess.History())

	c.JSON(http.StatusOK, result)
}

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.ingest.ListDocuments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type docView struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	}
	views := make([]docView, 0, len(docs))
	for _, d := range docs {
		views = append(views, docView{ID: d.ID, Name: d.Name, Path: d.Path})
	}
	c.JSON(http.StatusOK, gin.H{"documents": views})
}

// uploadDocument accepts either a multipart file (txt/md/pdf by name) or a
// JSON body with inline content or a URL.
func (s *Server) uploadDocument(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		s.uploadFile(c)
		return
	}

	var req struct {
		Name    string `json:"name"`
		Content string `json:"content"`
		URL     string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.URL != "" {
		if !webloader.IsURL(req.URL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
			return
		}
		page, err := s.loader.Load(c.Request.Context(), req.URL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		doc, chunks, err := s.ingest.IngestContent(c.Request.Context(), page.Title, page.URL, page.Text)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": doc.ID, "name": doc.Name, "chunks": chunks})
		return
	}

	if req.Name == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and content are required"})
		return
	}
	doc, chunks, err := s.ingest.IngestContent(c.Request.Context(), req.Name, req.Name, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": doc.ID, "name": doc.Name, "chunks": chunks})
}

func (s *Server) uploadFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	name := filepath.Base(header.Filename)
	content := string(data)
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		// The pdf reader wants a file path, so spill the upload to disk first.
		tmp, err := os.CreateTemp("", "upload-*.pdf")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to buffer upload"})
			return
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to buffer upload"})
			return
		}
		tmp.Close()
		content, err = fs.ExtractText(tmp.Name())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	doc, chunks, err := s.ingest.IngestContent(c.Request.Context(), name, name, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": doc.ID, "name": doc.Name, "chunks": chunks})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}
