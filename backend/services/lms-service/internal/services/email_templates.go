package services

const transactionalEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #1f2937; background-color: #f4f7fb; margin: 0; padding: 20px; }
.container { padding: 20px; max-width: 600px; margin: 20px auto; background-color: #ffffff; border: 1px solid #dbe4f0; border-radius: 8px; }
.header { font-size: 22px; font-weight: bold; color: #1d4ed8; margin-bottom: 15px; }
.content { padding: 20px; }
.highlight { font-size: 20px; font-weight: bold; letter-spacing: 2px; color: #1d4ed8; background-color: #eef2ff; padding: 10px 16px; border-radius: 5px; display: inline-block; margin: 12px 0; }
.footer { margin-top: 20px; font-size: 12px; color: #6b7280; text-align: center; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">%s</div>
    <div class="content">
      <p>%s</p>
      <div class="highlight">%s</div>
    </div>
    <div class="footer">
      © %d Doctrina. All rights reserved.
    </div>
  </div>
</body>
</html>`
