package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"lightbox/internal/api"
	"lightbox/internal/catalog"
	"lightbox/internal/daemon"
	"lightbox/internal/logging"
	"lightbox/internal/session"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Lightbox", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun lightbox stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.SessionStats = api.MergeSessionStats(status.SessionStats)
	resp.Catalog = api.FromCatalogStats(status.Catalog)
	resp.Dependencies = api.FromDependencyStatuses(status.Dependencies)
	resp.Checks = api.FromCheckResults(status.Checks)
	return nil
}

func (s *service) SessionList(req SessionListRequest, resp *SessionListResponse) error {
	statuses := make([]session.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := session.ParseStatus(status)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	sessions, err := s.daemon.ListSessions(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Sessions = api.SortSessionsNewestFirst(api.FromSessions(sessions))
	return nil
}

func (s *service) SessionDescribe(req SessionDescribeRequest, resp *SessionDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid session id %d", req.ID)
	}
	sess, err := s.daemon.GetSession(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session %d not found", req.ID)
	}
	resp.Session = api.FromSession(sess)
	return nil
}

func (s *service) SessionDiscard(req SessionDiscardRequest, resp *SessionDiscardResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid session id %d", req.ID)
	}
	s.log().Debug("session discard requested", logging.Int64(logging.FieldSessionID, req.ID))
	removed, err := s.daemon.DiscardSession(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	if removed {
		s.log().Info("session discarded",
			logging.String(logging.FieldEventType, "session_discard"),
			logging.Int64(logging.FieldSessionID, req.ID))
	}
	return nil
}

func (s *service) ClearPublished(_ ClearPublishedRequest, resp *ClearPublishedResponse) error {
	s.log().Debug("clear published requested")
	removed, err := s.daemon.ClearPublished(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("published sessions cleared",
		logging.String(logging.FieldEventType, "session_clear_published"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) SessionReset(_ SessionResetRequest, resp *SessionResetResponse) error {
	s.log().Debug("session reset requested")
	updated, err := s.daemon.ResetStuck(s.ctx)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("stuck publishing sessions reset",
		logging.String(logging.FieldEventType, "session_reset_stuck"),
		logging.Int64("updated_count", updated))
	return nil
}

func (s *service) Publish(req PublishRequest, resp *PublishResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid session id %d", req.ID)
	}
	if err := s.daemon.Publish(s.ctx, req.ID); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "publish started"
	return nil
}

func (s *service) SessionHealth(_ SessionHealthRequest, resp *SessionHealthResponse) error {
	health, err := s.daemon.SessionHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Drafts = health.Drafts
	resp.Publishing = health.Publishing
	resp.Published = health.Published
	resp.NeedsAttention = health.NeedsAttention
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	// Diagnostics with a recorded failure still travel back to the client.
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalSessions = health.TotalSessions
	resp.Error = health.Error
	return nil
}

func (s *service) CatalogList(req CatalogListRequest, resp *CatalogListResponse) error {
	var mediaType catalog.MediaType
	if req.MediaType != "" {
		parsed, err := catalog.ParseMediaType(req.MediaType)
		if err != nil {
			return err
		}
		mediaType = parsed
	}
	page := s.daemon.CatalogPage(mediaType, req.Cursor, req.PageSize)
	converted := api.FromCatalogPage(page)
	resp.Assets = converted.Assets
	resp.NextCursor = converted.NextCursor
	resp.HasMore = converted.HasMore
	return nil
}

func (s *service) CatalogScan(_ CatalogScanRequest, resp *CatalogScanResponse) error {
	s.log().Debug("catalog rescan requested")
	summary, err := s.daemon.RescanCatalog(s.ctx)
	if err != nil {
		return err
	}
	converted := api.FromScanSummary(summary)
	resp.Images = converted.Images
	resp.Videos = converted.Videos
	resp.Skipped = converted.Skipped
	resp.TookMillis = converted.TookMillis
	s.log().Info("catalog rescanned",
		logging.String(logging.FieldEventType, "catalog_scan"),
		logging.Int("image_count", summary.Images),
		logging.Int("video_count", summary.Videos))
	return nil
}

func (s *service) CatalogStats(_ CatalogStatsRequest, resp *CatalogStatsResponse) error {
	stats := api.FromCatalogStats(s.daemon.CatalogStats())
	resp.Images = stats.Images
	resp.Videos = stats.Videos
	resp.LastScan = stats.LastScan
	return nil
}

func (s *service) CatalogImport(req CatalogImportRequest, resp *CatalogImportResponse) error {
	s.log().Debug("catalog import requested", logging.String("source", req.Path))
	asset, err := s.daemon.ImportAsset(s.ctx, req.Path)
	if err != nil {
		return err
	}
	resp.Asset = api.FromAsset(asset)
	s.log().Info("asset imported",
		logging.String(logging.FieldEventType, "catalog_import"),
		logging.String("asset_id", asset.ID))
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
