package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BootstrapFunc monta o documento inicial a partir da fonte externa.
// Retornar nil significa "fonte indisponível": o Store cai no seed padrão.
type BootstrapFunc func(ctx context.Context) *Document

// Store guarda o documento em memória e reescreve o arquivo inteiro a cada
// mutação. Toda leitura-modificação-escrita roda sob o mutex; uma mutação que
// falha não deixa rastro (a closure opera sobre um clone e o swap só acontece
// depois do persist).
type Store struct {
	path string
	log  *slog.Logger

	mu  sync.Mutex
	doc *Document
}

func New(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, log: log}
}

// Load lê o documento do disco. Sem arquivo, tenta o bootstrap remoto e, em
// último caso, o seed padrão. O resultado é persistido imediatamente.
func (s *Store) Load(ctx context.Context, boot BootstrapFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var doc Document
		if jsonErr := json.Unmarshal(b, &doc); jsonErr != nil {
			return fmt.Errorf("documento corrompido em %s: %w", s.path, jsonErr)
		}
		s.doc = &doc
		s.log.Info("documento carregado", "path", s.path,
			"orders", len(doc.Orders), "inventory", len(doc.Inventory))
		return nil
	case errors.Is(err, os.ErrNotExist):
		var doc *Document
		if boot != nil {
			doc = boot(ctx)
		}
		if doc == nil {
			s.log.Warn("fonte externa indisponível no bootstrap, usando seed padrão")
			doc = SeedDocument()
		} else {
			s.log.Info("documento inicial montado a partir da fonte externa")
		}
		return s.swap(doc)
	default:
		return fmt.Errorf("ler %s: %w", s.path, err)
	}
}

// View executa fn com acesso de leitura ao documento sob o mutex.
// fn não deve guardar referências; copie o que precisar devolver.
func (s *Store) View(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Update aplica fn sobre um clone do documento e persiste o resultado.
// Se fn retornar erro nada é gravado nem trocado em memória.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return s.swap(next)
}

// swap persiste e só então troca o documento em cache. Chamar com mutex preso.
// Falha de I/O aqui é a única classe de erro que sobe até o chamador como fatal.
func (s *Store) swap(doc *Document) error {
	doc.LastSync = time.Now().UTC()

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar documento: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("criar diretório de dados: %w", err)
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("gravar %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("renomear %s: %w", tmp, err)
	}
	s.doc = doc
	return nil
}

// LastSync informa a proveniência/frescor dos dados servidos.
func (s *Store) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LastSync
}
